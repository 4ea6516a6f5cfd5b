package media

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"campaign_builder/internal/domain"
	"campaign_builder/internal/testutil"
)

type ModelTestSuite struct {
	suite.Suite
	model *Model
	seq   string
}

func TestModelTestSuite(t *testing.T) {
	suite.Run(t, new(ModelTestSuite))
}

func (s *ModelTestSuite) SetupTest() {
	n := 0
	s.model = New(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
	s.seq = s.model.Sequences()[0].ID
}

func (s *ModelTestSuite) addTexts(contents ...string) []string {
	ids := make([]string, len(contents))
	for i, c := range contents {
		it, err := s.model.AddItem(s.seq, domain.MediaText, c, nil)
		s.Require().NoError(err)
		ids[i] = it.ID
	}
	return ids
}

func (s *ModelTestSuite) assertDense(items []domain.MediaItem) {
	for i, it := range items {
		s.Equal(i+1, it.Order, "item %s", it.ID)
	}
}

func (s *ModelTestSuite) contents() []string {
	var out []string
	for _, it := range s.model.Sequences()[0].Items {
		out = append(out, it.Content)
	}
	return out
}

func (s *ModelTestSuite) TestNewHasDefaultSequence() {
	seqs := s.model.Sequences()
	s.Require().Len(seqs, 1)
	s.Equal(DefaultSequenceName, seqs[0].Name)
	s.Empty(seqs[0].Items)
	s.False(s.model.HasContent())
}

func (s *ModelTestSuite) TestRemoveLastSequenceRejected() {
	err := s.model.RemoveSequence(s.seq)
	s.ErrorIs(err, ErrLastSequence)
	s.Equal(1, s.model.Len())
}

func (s *ModelTestSuite) TestAddAndRemoveSequence() {
	second, err := s.model.AddSequence("")
	s.Require().NoError(err)
	s.Equal("Sequence 2", second.Name)

	third, err := s.model.AddSequence("  Follow-up ")
	s.Require().NoError(err)
	s.Equal("Follow-up", third.Name)

	_, err = s.model.AddSequence("follow-up")
	s.ErrorIs(err, ErrDuplicateName)

	s.Require().NoError(s.model.RemoveSequence(second.ID))
	s.Equal(2, s.model.Len())

	s.ErrorIs(s.model.RemoveSequence("missing"), ErrSequenceNotFound)
}

func (s *ModelTestSuite) TestRenameSequence() {
	other, err := s.model.AddSequence("Other")
	s.Require().NoError(err)

	s.NoError(s.model.RenameSequence(s.seq, "Welcome"))
	s.ErrorIs(s.model.RenameSequence(other.ID, "welcome"), ErrDuplicateName)
	s.ErrorIs(s.model.RenameSequence(other.ID, " "), ErrEmptyName)
	s.NoError(s.model.RenameSequence(s.seq, "WELCOME"))
}

func (s *ModelTestSuite) TestAddItemAssignsOrder() {
	s.addTexts("a", "b", "c")

	items := s.model.Sequences()[0].Items
	s.Len(items, 3)
	s.assertDense(items)
	s.True(s.model.HasContent())

	_, err := s.model.AddItem(s.seq, domain.MediaKind("sticker"), "", nil)
	s.ErrorIs(err, ErrInvalidKind)
}

func (s *ModelTestSuite) TestRemoveItemRenumbers() {
	ids := s.addTexts("a", "b", "c")

	s.Require().NoError(s.model.RemoveItem(s.seq, ids[0]))

	items := s.model.Sequences()[0].Items
	s.Equal([]string{"b", "c"}, s.contents())
	s.assertDense(items)

	s.ErrorIs(s.model.RemoveItem(s.seq, ids[0]), ErrItemNotFound)
}

func (s *ModelTestSuite) TestMoveItem() {
	ids := s.addTexts("a", "b", "c")

	s.Require().NoError(s.model.MoveItem(s.seq, ids[2], Up))
	s.Equal([]string{"a", "c", "b"}, s.contents())
	s.assertDense(s.model.Sequences()[0].Items)

	s.Require().NoError(s.model.MoveItem(s.seq, ids[0], Down))
	s.Equal([]string{"c", "a", "b"}, s.contents())
	s.assertDense(s.model.Sequences()[0].Items)
}

func (s *ModelTestSuite) TestMoveItemAtBoundaryIsNoop() {
	ids := s.addTexts("a", "b")

	s.NoError(s.model.MoveItem(s.seq, ids[0], Up))
	s.NoError(s.model.MoveItem(s.seq, ids[1], Down))
	s.Equal([]string{"a", "b"}, s.contents())
}

func (s *ModelTestSuite) TestUpdateItem() {
	ids := s.addTexts("hello")

	s.Require().NoError(s.model.UpdateItem(s.seq, ids[0], ItemUpdate{
		Kind:       testutil.Ptr(domain.MediaImage),
		Content:    testutil.Ptr("banner.png"),
		SourceBlob: []byte{0x89, 0x50},
	}))

	it := s.model.Sequences()[0].Items[0]
	s.Equal(domain.MediaImage, it.Kind)
	s.Equal("banner.png", it.Content)
	s.Equal([]byte{0x89, 0x50}, it.SourceBlob)

	err := s.model.UpdateItem(s.seq, ids[0], ItemUpdate{Kind: testutil.Ptr(domain.MediaKind("gif"))})
	s.ErrorIs(err, ErrInvalidKind)
}

func (s *ModelTestSuite) TestAddAlternative() {
	ids := s.addTexts("Oi {{nome}}")

	alt, err := s.model.AddAlternative(s.seq, ids[0], "Olá {{nome}}")
	s.Require().NoError(err)
	s.Equal(domain.MediaText, alt.Kind)
	s.Equal(1, alt.Order)

	it := s.model.Sequences()[0].Items[0]
	s.Require().Len(it.Alternatives, 1)
	s.Equal("Olá {{nome}}", it.Alternatives[0].Content)
}

func (s *ModelTestSuite) TestSequencesIsDeepCopy() {
	s.addTexts("a")

	seqs := s.model.Sequences()
	seqs[0].Items[0].Content = "changed"
	seqs[0].Name = "changed"

	s.Equal([]string{"a"}, s.contents())
	s.Equal(DefaultSequenceName, s.model.Sequences()[0].Name)
}

func (s *ModelTestSuite) TestValidate() {
	other, err := s.model.AddSequence("Other")
	s.Require().NoError(err)
	s.addTexts("a")

	err = s.model.Validate()
	s.ErrorIs(err, ErrEmptySequence)
	s.Contains(err.Error(), "Other")

	_, err = s.model.AddItem(other.ID, domain.MediaAudio, "audio.mp3", nil)
	s.Require().NoError(err)
	s.NoError(s.model.Validate())
}

func (s *ModelTestSuite) TestReplace() {
	s.model.Replace([]domain.MediaSequence{{
		Name: "From template",
		Items: []domain.MediaItem{
			{ID: "x", Kind: domain.MediaImage, Content: "second", Order: 7},
			{Kind: domain.MediaText, Content: "first", Order: 2},
		},
	}})

	seqs := s.model.Sequences()
	s.Require().Len(seqs, 1)
	s.NotEmpty(seqs[0].ID)
	s.Equal("first", seqs[0].Items[0].Content)
	s.NotEmpty(seqs[0].Items[0].ID)
	s.Equal("second", seqs[0].Items[1].Content)
	s.assertDense(seqs[0].Items)

	s.model.Replace(nil)
	s.Equal(1, s.model.Len())
	s.Equal(DefaultSequenceName, s.model.Sequences()[0].Name)
}

func (s *ModelTestSuite) TestMediaKinds() {
	s.addTexts("a", "b")
	_, err := s.model.AddItem(s.seq, domain.MediaVideo, "v.mp4", nil)
	s.Require().NoError(err)

	s.Equal([]domain.MediaKind{domain.MediaText, domain.MediaVideo}, s.model.MediaKinds())
}

func (s *ModelTestSuite) TestErrorsWrapIDs() {
	err := s.model.MoveItem("nope", "x", Up)
	s.True(errors.Is(err, ErrSequenceNotFound))
	s.Contains(err.Error(), "nope")
}

func (s *ModelTestSuite) TestPlaceholders() {
	s.Equal([]string{"nome", "empresa"}, Placeholders("Oi {{nome}}, tudo bem na {{ empresa }}? {{nome}}"))
	s.Nil(Placeholders("sem variaveis {{}}"))
}
