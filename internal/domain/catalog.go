package domain

import (
	"fmt"
	"strings"
)

// CatalogDocument is the serialized form of a catalog (stored as JSONB, cached in Redis).
type CatalogDocument struct {
	Version   string     `json:"version"`
	Questions []Question `json:"questions"`
	Sections  []Section  `json:"sections"`
}

// Catalog is the read-only question list plus its section map.
// Question order is significant: sessions walk it by index.
type Catalog struct {
	doc       CatalogDocument
	positions map[string]int
	sections  [][]int
	sectionOf map[int]int
}

// NewCatalog validates a document and resolves section membership to indices.
func NewCatalog(doc CatalogDocument) (*Catalog, error) {
	if strings.TrimSpace(doc.Version) == "" {
		return nil, fmt.Errorf("catalog version is empty")
	}
	if len(doc.Questions) == 0 {
		return nil, fmt.Errorf("catalog %s has no questions", doc.Version)
	}

	c := &Catalog{
		doc:       doc,
		positions: make(map[string]int, len(doc.Questions)),
		sections:  make([][]int, len(doc.Sections)),
		sectionOf: make(map[int]int),
	}
	for i, q := range doc.Questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d has no id", i)
		}
		if _, dup := c.positions[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("question %q has no options", q.ID)
		}
		c.positions[q.ID] = i
	}

	seen := make(map[string]struct{}, len(doc.Sections))
	for si, s := range doc.Sections {
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("duplicate section id %q", s.ID)
		}
		seen[s.ID] = struct{}{}

		indices := make([]int, 0, len(s.QuestionIDs))
		for _, qid := range s.QuestionIDs {
			pos, ok := c.positions[qid]
			if !ok {
				return nil, fmt.Errorf("section %q references question %q: %w", s.ID, qid, ErrOutOfRange)
			}
			indices = append(indices, pos)
			// first section wins when sections overlap
			if _, taken := c.sectionOf[pos]; !taken {
				c.sectionOf[pos] = si
			}
		}
		c.sections[si] = indices
	}
	return c, nil
}

// MustCatalog is NewCatalog for static, known-good documents.
func MustCatalog(doc CatalogDocument) *Catalog {
	c, err := NewCatalog(doc)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Version() string { return c.doc.Version }

func (c *Catalog) Len() int { return len(c.doc.Questions) }

// Document returns the serializable form of the catalog.
func (c *Catalog) Document() CatalogDocument { return c.doc }

// QuestionAt returns the question at a 0-based position.
func (c *Catalog) QuestionAt(index int) (Question, error) {
	if index < 0 || index >= len(c.doc.Questions) {
		return Question{}, fmt.Errorf("question %d of %d: %w", index, len(c.doc.Questions), ErrOutOfRange)
	}
	return c.doc.Questions[index], nil
}

// Sections returns the section map in declaration order.
func (c *Catalog) Sections() []Section { return c.doc.Sections }

// SectionIndices returns the question positions covered by a section.
func (c *Catalog) SectionIndices(sectionID string) ([]int, error) {
	for i, s := range c.doc.Sections {
		if s.ID == sectionID {
			return c.sections[i], nil
		}
	}
	return nil, fmt.Errorf("section %q: %w", sectionID, ErrOutOfRange)
}

// SectionContaining returns the section a question position belongs to.
func (c *Catalog) SectionContaining(index int) (Section, bool) {
	si, ok := c.sectionOf[index]
	if !ok {
		return Section{}, false
	}
	return c.doc.Sections[si], true
}

// FlagsFor derives flags from the current answers only, in catalog order and
// without duplicates. Answers whose text matches no option are ignored.
func (c *Catalog) FlagsFor(answers map[string]string) []string {
	flags := make([]string, 0)
	seen := make(map[string]struct{})
	for _, q := range c.doc.Questions {
		text, ok := answers[q.ID]
		if !ok {
			continue
		}
		for _, opt := range q.Options {
			if opt.Text != text {
				continue
			}
			for _, f := range opt.Flags {
				if _, dup := seen[f]; dup || f == "" {
					continue
				}
				seen[f] = struct{}{}
				flags = append(flags, f)
			}
			break
		}
	}
	return flags
}
