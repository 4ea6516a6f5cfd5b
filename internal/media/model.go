// Package media keeps the alternative message sequences of a campaign draft.
package media

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"campaign_builder/internal/domain"
)

const DefaultSequenceName = "Main sequence"

var (
	ErrLastSequence     = errors.New("at least one sequence must remain")
	ErrSequenceNotFound = errors.New("sequence not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrDuplicateName    = errors.New("sequence name already in use")
	ErrEmptyName        = errors.New("sequence name is empty")
	ErrInvalidKind      = errors.New("unknown media kind")
	ErrEmptySequence    = errors.New("sequence has no items")
)

type Direction int

const (
	Up Direction = iota
	Down
)

// ItemUpdate lists the fields to change on an item. Nil fields are kept.
type ItemUpdate struct {
	Kind       *domain.MediaKind
	Content    *string
	SourceBlob []byte
}

// Model is an ordered set of sequences, each an ordered list of items with
// dense 1-based orders. A Model always holds at least one sequence. It is not
// safe for concurrent use.
type Model struct {
	seqs  []domain.MediaSequence
	newID func() string
}

// New returns a model holding one empty default sequence.
func New(newID func() string) *Model {
	m := &Model{newID: newID}
	m.seqs = []domain.MediaSequence{m.defaultSequence()}
	return m
}

func (m *Model) defaultSequence() domain.MediaSequence {
	return domain.MediaSequence{ID: m.newID(), Name: DefaultSequenceName, Items: []domain.MediaItem{}}
}

// AddSequence appends an empty sequence. An empty name picks the next free
// "Sequence N".
func (m *Model) AddSequence(name string) (domain.MediaSequence, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = m.freeName()
	} else if m.nameTaken(name, "") {
		return domain.MediaSequence{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	seq := domain.MediaSequence{ID: m.newID(), Name: name, Items: []domain.MediaItem{}}
	m.seqs = append(m.seqs, seq)
	return domain.CloneSequences([]domain.MediaSequence{seq})[0], nil
}

func (m *Model) RemoveSequence(id string) error {
	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSequenceNotFound, id)
	}
	if len(m.seqs) == 1 {
		return ErrLastSequence
	}
	m.seqs = slices.Delete(m.seqs, i, i+1)
	return nil
}

func (m *Model) RenameSequence(id, name string) error {
	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSequenceNotFound, id)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if m.nameTaken(name, id) {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	m.seqs[i].Name = name
	return nil
}

// AddItem appends an item to the sequence.
func (m *Model) AddItem(seqID string, kind domain.MediaKind, content string, blob []byte) (domain.MediaItem, error) {
	if !kind.Valid() {
		return domain.MediaItem{}, fmt.Errorf("%w: %s", ErrInvalidKind, kind)
	}
	seq, err := m.sequence(seqID)
	if err != nil {
		return domain.MediaItem{}, err
	}

	item := domain.MediaItem{
		ID:         m.newID(),
		Kind:       kind,
		Content:    content,
		Order:      len(seq.Items) + 1,
		SourceBlob: slices.Clone(blob),
	}
	seq.Items = append(seq.Items, item)
	item.SourceBlob = slices.Clone(blob)
	return item, nil
}

func (m *Model) UpdateItem(seqID, itemID string, upd ItemUpdate) error {
	seq, err := m.sequence(seqID)
	if err != nil {
		return err
	}
	j := itemIndex(seq.Items, itemID)
	if j < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if upd.Kind != nil && !upd.Kind.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidKind, *upd.Kind)
	}

	it := &seq.Items[j]
	if upd.Kind != nil {
		it.Kind = *upd.Kind
	}
	if upd.Content != nil {
		it.Content = *upd.Content
	}
	if upd.SourceBlob != nil {
		it.SourceBlob = slices.Clone(upd.SourceBlob)
	}
	return nil
}

func (m *Model) RemoveItem(seqID, itemID string) error {
	seq, err := m.sequence(seqID)
	if err != nil {
		return err
	}
	j := itemIndex(seq.Items, itemID)
	if j < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	seq.Items = slices.Delete(seq.Items, j, j+1)
	renumber(seq.Items)
	return nil
}

// MoveItem swaps the item with its neighbour in dir. Moving the first item
// up or the last item down changes nothing.
func (m *Model) MoveItem(seqID, itemID string, dir Direction) error {
	seq, err := m.sequence(seqID)
	if err != nil {
		return err
	}
	j := itemIndex(seq.Items, itemID)
	if j < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	k := j - 1
	if dir == Down {
		k = j + 1
	}
	if k < 0 || k >= len(seq.Items) {
		return nil
	}
	seq.Items[j], seq.Items[k] = seq.Items[k], seq.Items[j]
	renumber(seq.Items)
	return nil
}

// AddAlternative attaches a variant of the item, one of which is picked per
// recipient. The variant keeps the item's kind.
func (m *Model) AddAlternative(seqID, itemID, content string) (domain.MediaItem, error) {
	seq, err := m.sequence(seqID)
	if err != nil {
		return domain.MediaItem{}, err
	}
	j := itemIndex(seq.Items, itemID)
	if j < 0 {
		return domain.MediaItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	it := &seq.Items[j]
	alt := domain.MediaItem{
		ID:      m.newID(),
		Kind:    it.Kind,
		Content: content,
		Order:   len(it.Alternatives) + 1,
	}
	it.Alternatives = append(it.Alternatives, alt)
	return alt, nil
}

// Sequences returns a deep copy of the sequences.
func (m *Model) Sequences() []domain.MediaSequence {
	return domain.CloneSequences(m.seqs)
}

func (m *Model) Len() int {
	return len(m.seqs)
}

// Replace swaps in seqs, typically from a template. Orders are rebuilt from
// the existing ones and missing ids are assigned. An empty seqs leaves one
// default sequence.
func (m *Model) Replace(seqs []domain.MediaSequence) {
	if len(seqs) == 0 {
		m.seqs = []domain.MediaSequence{m.defaultSequence()}
		return
	}

	out := domain.CloneSequences(seqs)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = m.newID()
		}
		for j := range out[i].Items {
			if out[i].Items[j].ID == "" {
				out[i].Items[j].ID = m.newID()
			}
		}
		slices.SortStableFunc(out[i].Items, func(a, b domain.MediaItem) int { return a.Order - b.Order })
		renumber(out[i].Items)
	}
	m.seqs = out
}

// HasContent reports whether some sequence holds an item.
func (m *Model) HasContent() bool {
	return slices.ContainsFunc(m.seqs, func(s domain.MediaSequence) bool { return len(s.Items) > 0 })
}

// Validate reports every sequence without items.
func (m *Model) Validate() error {
	var errs []error
	for _, s := range m.seqs {
		if len(s.Items) == 0 {
			errs = append(errs, fmt.Errorf("%w: %s", ErrEmptySequence, s.Name))
		}
	}
	return errors.Join(errs...)
}

// MediaKinds lists the distinct item kinds in first-use order.
func (m *Model) MediaKinds() []domain.MediaKind {
	out := []domain.MediaKind{}
	for _, s := range m.seqs {
		for _, it := range s.Items {
			if !slices.Contains(out, it.Kind) {
				out = append(out, it.Kind)
			}
		}
	}
	return out
}

func (m *Model) sequence(id string) (*domain.MediaSequence, error) {
	i := m.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSequenceNotFound, id)
	}
	return &m.seqs[i], nil
}

func (m *Model) indexOf(id string) int {
	return slices.IndexFunc(m.seqs, func(s domain.MediaSequence) bool { return s.ID == id })
}

func (m *Model) nameTaken(name, exceptID string) bool {
	return slices.ContainsFunc(m.seqs, func(s domain.MediaSequence) bool {
		return s.ID != exceptID && strings.EqualFold(s.Name, name)
	})
}

func (m *Model) freeName() string {
	for n := len(m.seqs) + 1; ; n++ {
		name := fmt.Sprintf("Sequence %d", n)
		if !m.nameTaken(name, "") {
			return name
		}
	}
}

func itemIndex(items []domain.MediaItem, id string) int {
	return slices.IndexFunc(items, func(it domain.MediaItem) bool { return it.ID == id })
}

func renumber(items []domain.MediaItem) {
	for i := range items {
		items[i].Order = i + 1
	}
}
