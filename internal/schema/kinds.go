package schema

import (
	"strconv"

	"github.com/dgallion1/agendagen/internal/doctree"
)

const (
	Doc             = doctree.RootKind
	Text            = doctree.TextKind
	Paragraph       doctree.Kind = "paragraph"
	StyledParagraph doctree.Kind = "styledParagraph"
	Heading         doctree.Kind = "heading"
	BulletList      doctree.Kind = "bulletList"
	OrderedList     doctree.Kind = "orderedList"
	ListItem        doctree.Kind = "listItem"
	HardBreak       doctree.Kind = "hardBreak"
	HorizontalRule  doctree.Kind = "horizontalRule"
	Image           doctree.Kind = "image"
	CoverHeader     doctree.Kind = "coverHeader"
	CouncilList     doctree.Kind = "councilList"
	LocationBlock   doctree.Kind = "locationBlock"
	NoticeBox       doctree.Kind = "noticeBox"
	SectionBreak    doctree.Kind = "sectionBreak"
	Logo            doctree.Kind = "logo"
	Title           doctree.Kind = "title"
)

// DefaultLogoSrc is a plain municipal seal used until a city supplies its own.
const DefaultLogoSrc = "data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'%3E%3Ccircle cx='50' cy='50' r='40' fill='%232e8b57'/%3E%3Ccircle cx='50' cy='50' r='30' fill='none' stroke='white' stroke-width='3'/%3E%3C/svg%3E"

var logoPixels = map[string]int{"small": 48, "medium": 64, "large": 80}

var alignments = []string{"left", "center", "right", "justify"}

func defaultKinds() []Descriptor {
	textAlign := AttrSpec{Name: "textAlign", Values: alignments, Markup: Markup{Place: ClassSuffix, Key: "text-"}}
	paragraphLike := []doctree.Kind{Paragraph, StyledParagraph}

	return []Descriptor{
		{
			Kind:    Doc,
			Group:   GroupRoot,
			Content: blocks(0),
			Produce: produceFragment,
		},
		{
			Kind:    Text,
			Group:   GroupInline,
			Content: leaf(),
		},
		{
			Kind:     Paragraph,
			Group:    GroupBlock,
			Content:  inline(),
			Attrs:    []AttrSpec{textAlign},
			Produce:  produceAligned("p"),
			Match:    "p",
			Priority: 0,
		},
		{
			Kind:    StyledParagraph,
			Group:   GroupBlock,
			Content: inline(),
			Attrs: []AttrSpec{
				{Name: "align", Default: "left", Values: alignments, Markup: Markup{Place: DataAttribute, Key: "data-align"}},
				{Name: "spacing", Default: "normal", Values: []string{"tight", "normal", "loose"}, Markup: Markup{Place: DataAttribute, Key: "data-spacing"}},
				{Name: "variant", Default: "body", Values: []string{"body", "heading", "subtitle", "fine-print"}, Markup: Markup{Place: DataAttribute, Key: "data-variant"}},
				{Name: "color", Check: checkColor, Markup: Markup{Place: DataAttribute, Key: "data-color"}},
			},
			Produce:  produceStyledParagraph,
			Match:    "p[data-align], p[data-spacing], p[data-variant], p[data-color]",
			Priority: 10,
		},
		{
			Kind:    Heading,
			Group:   GroupBlock,
			Content: inline(),
			Attrs: []AttrSpec{
				{Name: "level", Default: "1", Values: []string{"1", "2", "3", "4", "5", "6"}, Markup: Markup{Place: TagLevel}},
				textAlign,
			},
			Produce: produceHeading,
			Match:   "h1, h2, h3, h4, h5, h6",
		},
		{
			Kind:    BulletList,
			Group:   GroupBlock,
			Content: blocks(1, ListItem),
			Produce: produceTag("ul"),
			Match:   "ul",
		},
		{
			Kind:    OrderedList,
			Group:   GroupBlock,
			Content: blocks(1, ListItem),
			Attrs: []AttrSpec{
				{Name: "start", Default: "1", Check: checkPositiveInt, Markup: Markup{Place: HTMLAttribute, Key: "start"}},
			},
			Produce: produceOrderedList,
			Match:   "ol",
		},
		{
			Kind:    ListItem,
			Group:   GroupItem,
			Content: blocks(1),
			Produce: produceTag("li"),
			Match:   "li",
		},
		{
			Kind:    HardBreak,
			Group:   GroupInline,
			Content: leaf(),
			Produce: produceVoid("br"),
			Match:   "br",
		},
		{
			Kind:    HorizontalRule,
			Group:   GroupBlock,
			Content: leaf(),
			Produce: produceVoid("hr"),
			Match:   "hr",
		},
		{
			Kind:    Image,
			Group:   GroupBlock,
			Content: leaf(),
			Attrs: []AttrSpec{
				{Name: "src", Markup: Markup{Place: HTMLAttribute, Key: "src"}},
				{Name: "alt", Markup: Markup{Place: HTMLAttribute, Key: "alt"}},
				{Name: "width", Check: checkPositiveInt, Markup: Markup{Place: HTMLAttribute, Key: "width"}},
				{Name: "height", Check: checkPositiveInt, Markup: Markup{Place: HTMLAttribute, Key: "height"}},
				{Name: "class", Markup: Markup{Place: HTMLAttribute, Key: "class"}},
			},
			Produce: produceImage,
			Match:   "img",
		},
		{
			Kind:  CoverHeader,
			Group: GroupBlock,
			Content: fixed(
				kinds(CouncilList),
				kinds(Logo, Title),
				kinds(LocationBlock),
			),
			Produce:  produceMarked("div", "cover-header", "cover-header"),
			Match:    `div[data-type="cover-header"]`,
			Priority: 20,
		},
		{
			Kind:    CouncilList,
			Group:   GroupBlock,
			Content: blocks(1, paragraphLike...),
			Attrs: []AttrSpec{
				{Name: "caption", Default: "COUNCILMEMBERS", Check: checkNonBlank, Markup: Markup{Place: ElementText, In: ".council-title"}},
			},
			Produce:  produceCouncilList,
			Match:    `div[data-type="council-list"]`,
			Priority: 20,
			Inner:    ".council-members-content",
		},
		{
			Kind:     LocationBlock,
			Group:    GroupBlock,
			Content:  blocks(1, paragraphLike...),
			Produce:  produceMarked("div", "location-block", "location-block"),
			Match:    `div[data-type="location-block"]`,
			Priority: 20,
		},
		{
			Kind:    NoticeBox,
			Group:   GroupBlock,
			Content: blocks(1),
			Attrs: []AttrSpec{
				{Name: "title", Default: "Additional Meeting Procedures", Check: checkNonBlank, Markup: Markup{Place: ElementText, In: ".notice-box-title"}},
			},
			Produce:  produceNoticeBox,
			Match:    `div[data-type="notice-box"]`,
			Priority: 20,
			Inner:    ".notice-box-content",
		},
		{
			Kind:    SectionBreak,
			Group:   GroupBlock,
			Content: leaf(),
			Attrs: []AttrSpec{
				{Name: "text", Default: "REGULAR MEETING 7:00 PM", Check: checkNonBlank, Markup: Markup{Place: ElementText}},
			},
			Produce:  produceSectionBreak,
			Match:    `div[data-type="section-break"]`,
			Priority: 20,
		},
		{
			Kind:    Logo,
			Group:   GroupBlock,
			Content: leaf(),
			Attrs: []AttrSpec{
				{Name: "src", Default: DefaultLogoSrc, Markup: Markup{Place: HTMLAttribute, Key: "src", In: "img"}},
				{Name: "alt", Default: "City Logo", Markup: Markup{Place: HTMLAttribute, Key: "alt", In: "img"}},
				{Name: "size", Default: "large", Values: []string{"small", "medium", "large"}, Markup: Markup{Place: DataAttribute, Key: "data-size"}},
			},
			Produce:  produceLogo,
			Match:    `div[data-type="logo"]`,
			Priority: 20,
		},
		{
			Kind:    Title,
			Group:   GroupBlock,
			Content: inline(),
			Attrs: []AttrSpec{
				{Name: "level", Default: "main", Values: []string{"main", "sub"}, Markup: Markup{Place: ClassSuffix, Key: "agenda-title-"}},
			},
			Produce:  produceTitle,
			Match:    `h1[data-type="title"]`,
			Priority: 20,
		},
	}
}

func logoSize(size string) string {
	px, ok := logoPixels[size]
	if !ok {
		px = logoPixels["large"]
	}
	return strconv.Itoa(px)
}
