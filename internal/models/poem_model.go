package models

// Category is the literary form of a poem.
type Category string

const (
	CategoryKavithai Category = "kavithai" // verse
	CategoryPaadal   Category = "paadal"   // song
	CategoryKural    Category = "kural"    // couplet
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryKavithai, CategoryPaadal, CategoryKural:
		return true
	}
	return false
}

// Theme is the subject a poem belongs to.
type Theme string

const (
	ThemeLove      Theme = "love"
	ThemeNature    Theme = "nature"
	ThemeSocial    Theme = "social"
	ThemeSpiritual Theme = "spiritual"
)

// Valid reports whether t is one of the known themes.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLove, ThemeNature, ThemeSocial, ThemeSpiritual:
		return true
	}
	return false
}

// Poem is a single bilingual entry of the static catalog.
type Poem struct {
	ID              string   `json:"id" yaml:"id"`
	TitleTamil      string   `json:"titleTamil" yaml:"titleTamil"`
	TitleEnglish    string   `json:"titleEnglish" yaml:"titleEnglish"`
	ContentTamil    string   `json:"contentTamil" yaml:"contentTamil"`
	ContentEnglish  string   `json:"contentEnglish" yaml:"contentEnglish"`
	Category        Category `json:"category" yaml:"category"`
	Theme           Theme    `json:"theme" yaml:"theme"`
	PublicationDate string   `json:"publicationDate" yaml:"publicationDate"` // YYYY-MM-DD
	ImageURL        string   `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	Tags            []string `json:"tags" yaml:"tags"`
	Description     string   `json:"description" yaml:"description"`
	Author          string   `json:"author" yaml:"author"`
	ReadCount       int      `json:"readCount" yaml:"readCount"`
	AverageRating   float64  `json:"averageRating" yaml:"averageRating"`
	TotalReviews    int      `json:"totalReviews" yaml:"totalReviews"`
}
