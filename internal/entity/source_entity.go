package entity

type Source struct {
	Record
	Title       string   `json:"title" validate:"required,max=500"`
	Url         string   `json:"url" validate:"omitempty,url"`
	SourceType  string   `json:"source_type" validate:"omitempty,oneof=web pdf book article video other"`
	Authors     []string `json:"authors"`
	Publisher   string   `json:"publisher"`
	PublishedAt string   `json:"published_at"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
}

func (s *Source) Normalize() {
	if s.SourceType == "" {
		s.SourceType = "web"
	}
	if s.Authors == nil {
		s.Authors = []string{}
	}
}

// NeedsEnrichment reports whether the source has a URL but nothing extracted yet.
func (s *Source) NeedsEnrichment() bool {
	return s.Url != "" && len(s.Metadata) == 0
}

func NewSource() *Source { return &Source{} }

var _ LibraryItem = (*Source)(nil)
