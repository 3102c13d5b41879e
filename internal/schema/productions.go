package schema

import (
	"github.com/dgallion1/agendagen/internal/doctree"
)

// Producer emits the markup of one node from its resolved attributes and
// its already-converted children.
type Producer func(n *doctree.Node, attrs doctree.Attrs, inner string) string

func produceFragment(_ *doctree.Node, _ doctree.Attrs, inner string) string {
	return inner
}

func produceTag(tag string) Producer {
	return func(_ *doctree.Node, _ doctree.Attrs, inner string) string {
		return element(tag, nil, inner)
	}
}

func produceVoid(tag string) Producer {
	return func(_ *doctree.Node, _ doctree.Attrs, inner string) string {
		return void(tag, nil) + inner
	}
}

// produceMarked wraps children in a tagged block carrying the data-type
// marker and class the stylesheet keys on.
func produceMarked(tag, dataType, class string) Producer {
	return func(_ *doctree.Node, _ doctree.Attrs, inner string) string {
		return element(tag, []attr{{"data-type", dataType}, {"class", class}}, inner)
	}
}

func alignClass(align string) []attr {
	if align == "" {
		return nil
	}
	return []attr{{"class", "text-" + align}}
}

func produceAligned(tag string) Producer {
	return func(_ *doctree.Node, attrs doctree.Attrs, inner string) string {
		return element(tag, alignClass(attrs["textAlign"]), inner)
	}
}

func produceHeading(_ *doctree.Node, attrs doctree.Attrs, inner string) string {
	level := attrs["level"]
	if len(level) != 1 || level[0] < '1' || level[0] > '6' {
		level = "1"
	}
	return element("h"+level, alignClass(attrs["textAlign"]), inner)
}

var styledParagraphDecorations = []struct {
	name, dataAttr, def string
}{
	{"align", "data-align", "left"},
	{"spacing", "data-spacing", "normal"},
	{"variant", "data-variant", "body"},
	{"color", "data-color", ""},
}

func produceStyledParagraph(_ *doctree.Node, attrs doctree.Attrs, inner string) string {
	var as []attr
	for _, d := range styledParagraphDecorations {
		if v := attrs[d.name]; v != "" && v != d.def {
			as = append(as, attr{d.dataAttr, v})
		}
	}
	return element("p", as, inner)
}

func produceOrderedList(_ *doctree.Node, attrs doctree.Attrs, inner string) string {
	var as []attr
	if start := attrs["start"]; start != "" && start != "1" {
		as = append(as, attr{"start", start})
	}
	return element("ol", as, inner)
}

func produceImage(_ *doctree.Node, attrs doctree.Attrs, inner string) string {
	as := []attr{{"src", attrs["src"]}, {"alt", attrs["alt"]}}
	for _, name := range []string{"width", "height", "class"} {
		if v := attrs[name]; v != "" {
			as = append(as, attr{name, v})
		}
	}
	return void("img", as) + inner
}

func produceCouncilList(_ *doctree.Node, attrs doctree.Attrs, inner string) string {
	caption := element("h3", []attr{{"class", "council-title"}}, Escape(attrs["caption"]))
	members := element("div", []attr{{"class", "council-members-content"}}, inner)
	return element("div", []attr{{"data-type", "council-list"}, {"class", "council-list"}}, caption+members)
}

func produceNoticeBox(_ *doctree.Node, attrs doctree.Attrs, inner string) string {
	title := element("div", []attr{{"class", "notice-box-title"}}, Escape(attrs["title"]))
	content := element("div", []attr{{"class", "notice-box-content"}}, inner)
	return element("div", []attr{{"data-type", "notice-box"}, {"class", "notice-box"}}, title+content)
}

func produceSectionBreak(_ *doctree.Node, attrs doctree.Attrs, inner string) string {
	return element("div", []attr{{"data-type", "section-break"}, {"class", "section-break"}}, Escape(attrs["text"])) + inner
}

func produceLogo(_ *doctree.Node, attrs doctree.Attrs, inner string) string {
	outer := []attr{{"data-type", "logo"}, {"class", "logo-container"}}
	if size := attrs["size"]; size != "" && size != "large" {
		outer = append(outer, attr{"data-size", size})
	}
	px := logoSize(attrs["size"])
	img := void("img", []attr{
		{"src", attrs["src"]},
		{"alt", attrs["alt"]},
		{"class", "logo logo-" + attrs["size"]},
		{"width", px},
		{"height", px},
	})
	return element("div", outer, img) + inner
}

func produceTitle(_ *doctree.Node, attrs doctree.Attrs, inner string) string {
	level := attrs["level"]
	return element("h1", []attr{{"data-type", "title"}, {"class", "agenda-title agenda-title-" + level}}, inner)
}
