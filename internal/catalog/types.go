package catalog

// Entity kinds.
const (
	KindCat     = "cat"
	KindPokemon = "pokemon"
)

// ValidKind reports whether kind has a catalog.
func ValidKind(kind string) bool {
	return kind == KindCat || kind == KindPokemon
}

// Entity is the catalog-neutral view of a swipeable card.
type Entity struct {
	Kind     string   `json:"kind"`
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	MediaURL string   `json:"media_url"`
	Tags     []string `json:"tags"`
}

// NameURL is PokeAPI's named resource reference.
type NameURL struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type simpleSprite struct {
	FrontDefault string `json:"front_default"`
}

// Sprites holds the sprite URLs used as card media.
type Sprites struct {
	FrontDefault string `json:"front_default"`
	Other        struct {
		DreamWorld      simpleSprite `json:"dream_world"`
		OfficialArtwork simpleSprite `json:"official-artwork"`
	} `json:"other"`
}

// Pokemon is the subset of the PokeAPI pokemon resource the game uses.
type Pokemon struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	BaseExperience int     `json:"base_experience"`
	Height         int     `json:"height"`
	Weight         int     `json:"weight"`
	Species        NameURL `json:"species"`
	Sprites        Sprites `json:"sprites"`
	Types          []struct {
		Slot int     `json:"slot"`
		Type NameURL `json:"type"`
	} `json:"types"`
	Abilities []struct {
		Ability  NameURL `json:"ability"`
		IsHidden bool    `json:"is_hidden"`
		Slot     int     `json:"slot"`
	} `json:"abilities"`
}

// TypeNames returns the pokemon's type names in slot order.
func (p *Pokemon) TypeNames() []string {
	out := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		out = append(out, t.Type.Name)
	}
	return out
}

// Entity converts the pokemon to a card.
func (p *Pokemon) Entity() Entity {
	media := p.Sprites.Other.OfficialArtwork.FrontDefault
	if media == "" {
		media = p.Sprites.FrontDefault
	}
	return Entity{
		Kind:     KindPokemon,
		ID:       formatID(p.ID),
		Name:     p.Name,
		MediaURL: media,
		Tags:     p.TypeNames(),
	}
}

// Breed is the subset of a cat breed the game uses.
type Breed struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Origin string `json:"origin"`
}

// CatImage is one image from the cat API.
type CatImage struct {
	ID     string  `json:"id"`
	URL    string  `json:"url"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Breeds []Breed `json:"breeds"`
}

// Entity converts the image to a card keyed by its sequence index.
func (c *CatImage) Entity(index int64) Entity {
	tags := make([]string, 0, len(c.Breeds))
	name := c.ID
	for _, b := range c.Breeds {
		tags = append(tags, b.Name)
	}
	if len(tags) > 0 {
		name = tags[0]
	}
	return Entity{
		Kind:     KindCat,
		ID:       formatID(index),
		Name:     name,
		MediaURL: c.URL,
		Tags:     tags,
	}
}
