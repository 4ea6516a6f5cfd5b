package domain

type MediaKind string

const (
	MediaText          MediaKind = "text"
	MediaImage         MediaKind = "image"
	MediaVideo         MediaKind = "video"
	MediaAudio         MediaKind = "audio"
	MediaFile          MediaKind = "file"
	MediaRecordedAudio MediaKind = "recordedAudio"
)

// Valid reports whether k is a known media kind.
func (k MediaKind) Valid() bool {
	switch k {
	case MediaText, MediaImage, MediaVideo, MediaAudio, MediaFile, MediaRecordedAudio:
		return true
	}
	return false
}

// MediaItem is one piece of content in a sequence. Order is 1-based and
// dense within the owning sequence.
type MediaItem struct {
	ID           string      `json:"id"`
	Kind         MediaKind   `json:"kind"`
	Content      string      `json:"content"`
	Order        int         `json:"order"`
	SourceBlob   []byte      `json:"source_blob,omitempty"`
	Alternatives []MediaItem `json:"alternatives,omitempty"`
}

// MediaSequence is one alternative ordered list of items sent to a recipient.
type MediaSequence struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Items []MediaItem `json:"items"`
}

// CloneSequences deep-copies seqs.
func CloneSequences(seqs []MediaSequence) []MediaSequence {
	out := make([]MediaSequence, len(seqs))
	for i, s := range seqs {
		out[i] = MediaSequence{ID: s.ID, Name: s.Name, Items: cloneItems(s.Items)}
	}
	return out
}

func cloneItems(items []MediaItem) []MediaItem {
	if items == nil {
		return []MediaItem{}
	}
	out := make([]MediaItem, len(items))
	for i, it := range items {
		out[i] = it
		if it.SourceBlob != nil {
			out[i].SourceBlob = append([]byte(nil), it.SourceBlob...)
		}
		if it.Alternatives != nil {
			out[i].Alternatives = cloneItems(it.Alternatives)
		}
	}
	return out
}
