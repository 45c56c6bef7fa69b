package form

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/orgball2608/fb-post-manager/internal/domain"
)

// Choice tokens of the publish select. Only TrueToken publishes.
const (
	TrueToken  = "True"
	FalseToken = "False"
)

type Widget string

const (
	WidgetText     Widget = "text"
	WidgetTextarea Widget = "textarea"
	WidgetURL      Widget = "url"
	WidgetSelect   Widget = "select"
)

type Choice struct {
	Value string
	Label string
}

// Field describes how one input is rendered.
type Field struct {
	Name     string
	Label    string
	Widget   Widget
	Required bool
	Choices  []Choice
}

var publishChoices = []Choice{{TrueToken, "Yes"}, {FalseToken, "No"}}

// Submission is a validated post form of one kind.
type Submission interface {
	Kind() domain.PostKind
	Published() bool
	// Params is the parameter set of the create call.
	Params() url.Values
}

type Base struct {
	IsPublished string `form:"is_published" validate:"required,oneof=True False"`
	Message     string `form:"message" validate:"required"`
}

func (b *Base) Published() bool {
	return b.IsPublished == TrueToken
}

func (b *Base) published() string {
	return strconv.FormatBool(b.Published())
}

type StatusForm struct {
	Base
}

func (f *StatusForm) Kind() domain.PostKind { return domain.PostKindStatus }

func (f *StatusForm) Params() url.Values {
	return url.Values{
		"message":   {f.Message},
		"published": {f.published()},
	}
}

type LinkForm struct {
	Base
	LinkURL         string `form:"link_url" validate:"required,web_url"`
	LinkName        string `form:"link_name"`
	LinkCaption     string `form:"link_caption"`
	LinkDescription string `form:"link_description"`
	Picture         string `form:"picture" validate:"required,web_url"`
}

func (f *LinkForm) Kind() domain.PostKind { return domain.PostKindLink }

func (f *LinkForm) Params() url.Values {
	return url.Values{
		"link":        {f.LinkURL},
		"caption":     {f.LinkCaption},
		"picture":     {f.Picture},
		"name":        {f.LinkName},
		"description": {f.LinkDescription},
		"published":   {f.published()},
	}
}

type PhotoForm struct {
	Base
	PhotoURL string `form:"photo_url" validate:"required,web_url"`
}

func (f *PhotoForm) Kind() domain.PostKind { return domain.PostKindPhoto }

func (f *PhotoForm) Params() url.Values {
	return url.Values{
		"message":   {f.Message},
		"url":       {f.PhotoURL},
		"published": {f.published()},
	}
}

type VideoForm struct {
	Base
	Title    string `form:"title" validate:"required"`
	VideoURL string `form:"video_url" validate:"required,web_url"`
}

func (f *VideoForm) Kind() domain.PostKind { return domain.PostKindVideo }

func (f *VideoForm) Params() url.Values {
	return url.Values{
		"message":   {f.Message},
		"file_url":  {f.VideoURL},
		"title":     {f.Title},
		"published": {f.published()},
	}
}

// Schema is the field layout of a post kind.
type Schema struct {
	Kind   domain.PostKind
	Fields []Field
	new    func() Submission
}

var baseFields = []Field{
	{Name: "is_published", Label: "This post will be published", Widget: WidgetSelect, Required: true, Choices: publishChoices},
	{Name: "message", Label: "Post text", Widget: WidgetTextarea, Required: true},
}

func withBase(fields ...Field) []Field {
	return append(append([]Field(nil), baseFields...), fields...)
}

var schemas = map[domain.PostKind]Schema{
	domain.PostKindStatus: {
		Kind:   domain.PostKindStatus,
		Fields: withBase(),
		new:    func() Submission { return &StatusForm{} },
	},
	domain.PostKindLink: {
		Kind: domain.PostKindLink,
		Fields: withBase(
			Field{Name: "link_url", Label: "URL", Widget: WidgetURL, Required: true},
			Field{Name: "link_name", Label: "Link name", Widget: WidgetText},
			Field{Name: "link_caption", Label: "Link caption", Widget: WidgetText},
			Field{Name: "link_description", Label: "Link description", Widget: WidgetTextarea},
			Field{Name: "picture", Label: "Picture URL", Widget: WidgetURL, Required: true},
		),
		new: func() Submission { return &LinkForm{} },
	},
	domain.PostKindPhoto: {
		Kind:   domain.PostKindPhoto,
		Fields: withBase(Field{Name: "photo_url", Label: "Photo URL", Widget: WidgetURL, Required: true}),
		new:    func() Submission { return &PhotoForm{} },
	},
	domain.PostKindVideo: {
		Kind: domain.PostKindVideo,
		Fields: withBase(
			Field{Name: "title", Label: "Title", Widget: WidgetText, Required: true},
			Field{Name: "video_url", Label: "Video URL", Widget: WidgetURL, Required: true},
		),
		new: func() Submission { return &VideoForm{} },
	},
}

func SchemaFor(kind domain.PostKind) (Schema, error) {
	s, ok := schemas[kind]
	if !ok {
		return Schema{}, fmt.Errorf("no form for post kind %q", kind)
	}
	return s, nil
}

// Decode binds values to the form of kind and validates it.
// The submission is nil whenever errs is not empty.
func Decode(kind domain.PostKind, values url.Values) (Submission, Errors, error) {
	schema, err := SchemaFor(kind)
	if err != nil {
		return nil, nil, err
	}

	sub := schema.new()
	bind(reflect.ValueOf(sub).Elem(), values)

	if errs := validate(sub); len(errs) > 0 {
		return nil, errs, nil
	}
	return sub, nil, nil
}

// bind copies trimmed values into the string fields tagged with `form`, descending into embedded structs.
// URL fields without a scheme default to http.
func bind(v reflect.Value, values url.Values) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := v.Field(i)
		if sf.Anonymous && fv.Kind() == reflect.Struct {
			bind(fv, values)
			continue
		}
		name := sf.Tag.Get("form")
		if name == "" || fv.Kind() != reflect.String {
			continue
		}
		value := strings.TrimSpace(values.Get(name))
		if strings.Contains(sf.Tag.Get("validate"), "web_url") {
			value = withDefaultScheme(value)
		}
		fv.SetString(value)
	}
}

// withDefaultScheme prefixes "http://" to a URL typed without a scheme, e.g. "example.com/x".
func withDefaultScheme(raw string) string {
	if raw == "" {
		return raw
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme == "" && !strings.HasPrefix(raw, "//") {
		return "http://" + raw
	}
	return raw
}
