package domain

// Theme is a named topic bucket mapped to the keyword phrases that match it.
type Theme struct {
	Name     string
	Keywords []string
}

// Taxonomy is an ordered list of themes. Order matters: matched topics and
// their derived metadata follow taxonomy declaration order.
type Taxonomy []Theme
