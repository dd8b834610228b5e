package conversation

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "short input unchanged", input: "hi", want: "hi"},
		{name: "empty input", input: "", want: ""},
		{name: "exactly forty characters", input: strings.Repeat("b", 40), want: strings.Repeat("b", 40)},
		{name: "fifty characters truncated", input: strings.Repeat("a", 50), want: strings.Repeat("a", 40) + "..."},
		{name: "forty one characters truncated", input: strings.Repeat("c", 41), want: strings.Repeat("c", 40) + "..."},
		{name: "multibyte characters counted once", input: strings.Repeat("é", 45), want: strings.Repeat("é", 40) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.input))
		})
	}
}

func TestEditTitle(t *testing.T) {
	assert.Equal(t, "Edit: Image Session", EditTitle(""))
	assert.Equal(t, "Edit: cat.png", EditTitle("cat.png"))
}

func TestRecordKindFollowsContent(t *testing.T) {
	img := Image{MIMEType: MIMETypePNG, Data: []byte{1}}
	records := map[Kind]*Record{
		KindChat:            New("a", "t", Now(), NewChat(DefaultChatModel, Message{ID: "m", Author: AuthorUser, Content: "x"})),
		KindImageGeneration: New("b", "t", Now(), NewGeneration(GenerationEvent{Prompt: "p"})),
		KindImageEditing:    New("c", "t", Now(), NewEditing(img)),
	}

	for kind, rec := range records {
		assert.Equal(t, kind, rec.Kind())
		got := Match(rec.Content,
			func(*Chat) Kind { return KindChat },
			func(*Generation) Kind { return KindImageGeneration },
			func(*Editing) Kind { return KindImageEditing },
		)
		assert.Equal(t, kind, got)
	}

	var empty *Record
	assert.Equal(t, Kind(""), empty.Kind())
}

func TestChatIgnoresPlaceholder(t *testing.T) {
	c := &Chat{}
	c.Append(Placeholder())
	c.Append(Message{ID: "1", Author: AuthorUser, Content: "hello"})

	require.Len(t, c.Messages, 1)
	assert.Equal(t, "hello", c.Messages[0].Content)
}

func TestEditingCurrent(t *testing.T) {
	base := Image{URL: "base", MIMEType: MIMETypePNG, Data: []byte("base")}
	e1 := Image{URL: "e1", MIMEType: MIMETypePNG, Data: []byte("e1")}
	e2 := Image{URL: "e2", MIMEType: MIMETypePNG, Data: []byte("e2")}

	ed := NewEditing(base)
	assert.Equal(t, base, ed.Current())

	ed.Append(EditEvent{Prompt: "one", Edited: e1, Timestamp: Now()})
	ed.Append(EditEvent{Prompt: "two", Edited: e2, Timestamp: Now()})
	assert.Equal(t, e2, ed.Current())

	ed.History = ed.History[:1]
	assert.Equal(t, e1, ed.Current())
}

func TestEditingStoresNoCurrentImage(t *testing.T) {
	typ := reflect.TypeOf(Editing{})
	imageType := reflect.TypeOf(Image{})

	var imageFields []string
	for i := 0; i < typ.NumField(); i++ {
		if typ.Field(i).Type == imageType {
			imageFields = append(imageFields, typ.Field(i).Name)
		}
	}
	assert.Equal(t, []string{"Base"}, imageFields)
}

func TestGenerationParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *GenerationParams)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*GenerationParams) {}},
		{name: "jpeg output", mutate: func(p *GenerationParams) { p.OutputMIMEType = MIMETypeJPEG }},
		{name: "four images", mutate: func(p *GenerationParams) { p.NumberOfImages = 4 }},
		{name: "zero images", mutate: func(p *GenerationParams) { p.NumberOfImages = 0 }, wantErr: true},
		{name: "five images", mutate: func(p *GenerationParams) { p.NumberOfImages = 5 }, wantErr: true},
		{name: "unknown aspect ratio", mutate: func(p *GenerationParams) { p.AspectRatio = "2:1" }, wantErr: true},
		{name: "gif output", mutate: func(p *GenerationParams) { p.OutputMIMEType = "image/gif" }, wantErr: true},
		{name: "missing model", mutate: func(p *GenerationParams) { p.Model = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultGenerationParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestImageValidate(t *testing.T) {
	assert.NoError(t, Image{MIMEType: MIMETypeJPEG, Data: []byte{0xff}}.Validate())
	assert.Error(t, Image{MIMEType: MIMETypeJPEG}.Validate())
	assert.Error(t, Image{MIMEType: "text/plain", Data: []byte("x")}.Validate())
}

func TestImageDataURL(t *testing.T) {
	img := Image{MIMEType: MIMETypePNG, Data: []byte("abc")}
	assert.Equal(t, "data:image/png;base64,YWJj", img.DataURL())
}
