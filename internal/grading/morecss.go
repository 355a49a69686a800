package grading

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/noah-isme/gema-lab-grader/internal/markup"
	"github.com/noah-isme/gema-lab-grader/internal/stylesheet"
)

// MoreCSSDeadline is 28 Jan 2026, 11:59 PM in Riyadh (UTC+03:00).
const MoreCSSDeadline = "2026-01-28T23:59:00+03:00"

const (
	moreCSSSubmissionMax  = 20
	moreCSSSubmissionLate = 10
)

var (
	starGroupSelector     = stylesheet.SelectorPattern(`\*\s*,\s*\*\s*::before\s*,\s*\*\s*::after`)
	headerFooterSelector  = stylesheet.SelectorPattern(`\.site-header\s*,\s*\.site-footer`)
	colorNoteSelector     = stylesheet.SelectorPattern(`\.color-demo\s+\.color-note\b`)
	colorMutedSelector    = stylesheet.SelectorPattern(`\.color-demo\s+\.muted\b`)
	copyTitleSelector     = stylesheet.SelectorPattern(`\.copy\s+\.title\b`)
	copyIntroSelector     = stylesheet.SelectorPattern(`\.copy\s+\.intro\b`)
	buttonHoverSelector   = stylesheet.SelectorPattern(`\.btn\s*:\s*hover\b`)
	productItemSelector   = stylesheet.SelectorPattern(`\.product-grid\s+\.item\b`)
	translucentBlack18    = stylesheet.NewPattern(`rgba\(\s*0\s*,\s*0\s*,\s*0\s*,\s*0?\.18\s*\)`)
	translucentBlack05    = stylesheet.NewPattern(`rgba\(\s*0\s*,\s*0\s*,\s*0\s*,\s*0?\.05\s*\)`)
	softTranslucent       = stylesheet.NewPattern(`rgba\([^)]*,\s*0?\.0[1-9]\d*\s*\)`)
	lightHex              = stylesheet.NewPattern(`#f[0-9a-f]{2}(?:[0-9a-f]{3})?\b`)
	brandGradient         = stylesheet.NewPattern(`linear-gradient\(.*var\(\s*--brand\s*[,)]`)
	percentFull           = stylesheet.NewPattern(`100\s*%`)
	nonEmpty              = stylesheet.ValueFunc(func(v string) bool { return strings.TrimSpace(v) != "" })
	backgroundProperties  = []string{"background-color", "background"}
	gapProperties         = []string{"gap", "row-gap", "column-gap"}
	spacingQuarter        = stylesheet.Rem(0.25)
	spacingHalf           = stylesheet.Rem(0.5)
	spacingThreeQuarters  = stylesheet.Rem(0.75)
	mutedFontSize         = stylesheet.Length{MinPx: 14, MaxPx: 16}
	unitlessOne           = stylesheet.Number{Min: 1, Max: 1}
	flexBasis140          = stylesheet.Near(140, 0)
	hairline              = stylesheet.Near(1, 0)
	relaxedLineHeight     = stylesheet.Number{Min: 1.6, Max: math.Inf(1), AnyUnit: true}
	flexDisplay           = stylesheet.Keyword{"flex"}
	centered              = stylesheet.Keyword{"center"}
	anyDisplayFlex        = stylesheet.Keyword{"flex", "inline-flex"}
	cornerRadius          = stylesheet.InUnits("px", "rem")
	toolbarGap            = stylesheet.InUnits("px", "rem")
	staticBoxCornerRadius = stylesheet.Near(10, 0)
)

// varRef accepts var(--name), with or without a fallback.
func varRef(name string) stylesheet.Pattern {
	return stylesheet.NewPattern(`var\(\s*` + regexp.QuoteMeta(name) + `\s*[,)]`)
}

// hasComponent accepts a value that lists keyword anywhere in a shorthand.
func hasComponent(keyword string) stylesheet.ValueFunc {
	return func(value string) bool {
		for _, component := range stylesheet.Components(value) {
			if strings.EqualFold(component, keyword) {
				return true
			}
		}
		return false
	}
}

// MoreCSS is the "3-2-More-CSS" lab: 80 marks of TODOs and 20 for timing.
func MoreCSS() Lab {
	deadline, err := time.Parse(time.RFC3339, MoreCSSDeadline)
	if err != nil {
		panic(err)
	}

	return Lab{
		Name:           "3-2-More-CSS-main",
		MarkupFile:     "index.html",
		StylesheetFile: "styles.css",
		Deadline: Deadline{
			At:        deadline,
			FullMarks: moreCSSSubmissionMax,
			LateMarks: moreCSSSubmissionLate,
		},
		Markup: MarkupTask{
			Task:   Task{ID: "todo0", Name: "TODO 0: HTML links styles.css in <head>", Marks: 6},
			Checks: linkChecks("styles.css"),
		},
		Stylesheet: []StylesheetTask{
			{Task: Task{ID: "todo1", Name: "TODO 1: :root variables + global box-sizing reset (*)", Marks: 14}, Checks: variablesAndResetChecks},
			{Task: Task{ID: "todo2", Name: "TODO 2: Header/Footer background + .tagline muted", Marks: 8}, Checks: headerFooterChecks},
			{Task: Task{ID: "todo3", Name: "TODO 3: .color-demo notes + .bg-sample block styling", Marks: 16}, Checks: colorDemoChecks},
			{Task: Task{ID: "todo4", Name: "TODO 4: Inline labels (.inline-label, .inline-label.alt)", Marks: 10}, Checks: inlineLabelChecks},
			{Task: Task{ID: "todo5", Name: "TODO 5: Typography for .copy .title and .copy .intro", Marks: 10}, Checks: typographyChecks},
			{Task: Task{ID: "todo6", Name: "TODO 6: Flex toolbar/buttons + product grid/items", Marks: 12}, Checks: flexLayoutChecks},
			{Task: Task{ID: "todo7", Name: "TODO 7: .static-box visibility styling", Marks: 4}, Checks: staticBoxChecks},
		},
		Parser: stylesheet.BraceParser{},
	}
}

func linkChecks(stylesheetName string) func(string) []Check {
	return func(document string) []Check {
		head, ok := markup.Head(document)
		return []Check{
			Require("Has <head> section", ok),
			Require(`Has <link rel="stylesheet" href="`+stylesheetName+`"> (or "./`+stylesheetName+`") inside <head>`, ok && markup.LinksStylesheet(head, stylesheetName)),
		}
	}
}

func variablesAndResetChecks(rules stylesheet.Rules) []Check {
	root := append(rules.Exact(":root"), rules.Exact("html")...)
	star := append(rules.Exact("*"), rules.Matching(starGroupSelector)...)

	return []Check{
		Require("Has :root { ... } (or html { ... }) rule for CSS variables", len(root) > 0),
		Require("Defines --brand: #2563eb", stylesheet.AnyBody(root, stylesheet.Property("--brand").Value(stylesheet.Color("#2563eb")))),
		Require("Defines --brand-dark: #1d4ed8", stylesheet.AnyBody(root, stylesheet.Property("--brand-dark").Value(stylesheet.Color("#1d4ed8")))),
		Require("Has * (or *, *::before, *::after) rule for global reset", len(star) > 0),
		Require("Global reset sets box-sizing: border-box", stylesheet.AnyBody(star, stylesheet.Property("box-sizing").Value(stylesheet.Keyword{"border-box"}))),
	}
}

func headerFooterChecks(rules stylesheet.Rules) []Check {
	headerFooter := append(rules.Exact(".site-header"), rules.Exact(".site-footer")...)
	headerFooter = append(headerFooter, rules.Matching(headerFooterSelector)...)
	tagline := rules.Exact(".tagline")

	return []Check{
		Require("Has .site-header and .site-footer rule(s)", len(headerFooter) > 0),
		Require(".site-header/.site-footer background uses var(--card) (background or background-color)",
			stylesheet.AnyBody(headerFooter, stylesheet.Property(backgroundProperties...).Value(varRef("--card")))),
		Require("Has .tagline { ... } rule", len(tagline) > 0),
		Require(".tagline color uses var(--muted)", stylesheet.AnyBody(tagline, stylesheet.Property("color").Value(varRef("--muted")))),
	}
}

func colorDemoChecks(rules stylesheet.Rules) []Check {
	note := rules.Matching(colorNoteSelector)
	muted := rules.Matching(colorMutedSelector)
	sample := rules.Exact(".bg-sample")

	marginBlock := stylesheet.AnyOf{
		stylesheet.Property("margin-block").Value(spacingThreeQuarters),
		stylesheet.AllOf{
			stylesheet.Property("margin-top").Value(spacingThreeQuarters),
			stylesheet.Property("margin-bottom").Value(spacingThreeQuarters),
		},
	}

	return []Check{
		Require("Has .color-demo .color-note { ... } rule", len(note) > 0),
		Require(".color-note sets color: var(--brand)", stylesheet.AnyBody(note, stylesheet.Property("color").Value(varRef("--brand")))),
		Require(".color-note sets font-weight to bold/600+", stylesheet.AnyBody(note, stylesheet.Property("font-weight").Value(stylesheet.Weight{Min: 600, Max: 1000}))),

		Require("Has .color-demo .muted { ... } rule", len(muted) > 0),
		Require(".muted sets color: var(--muted)", stylesheet.AnyBody(muted, stylesheet.Property("color").Value(varRef("--muted")))),
		Require(".muted sets font-size around 0.95rem (accept 0.9–1rem or close px)", stylesheet.AnyBody(muted, stylesheet.Property("font-size").Value(mutedFontSize))),

		Require("Has .bg-sample { ... } rule", len(sample) > 0),
		Require(".bg-sample sets width: 100%", stylesheet.AnyBody(sample, stylesheet.Property("width").Value(percentFull))),
		Require(".bg-sample sets min-height >= 80px", stylesheet.AnyBody(sample, stylesheet.Property("min-height").Value(stylesheet.AtLeast(80)))),
		Require(".bg-sample sets padding around 0.75rem (or 12px)", stylesheet.AnyBody(sample, stylesheet.Property("padding").Value(spacingThreeQuarters))),
		Require(".bg-sample sets margin-block around 0.75rem (or margin-top/bottom)", stylesheet.AnyBody(sample, marginBlock)),
		Require(".bg-sample sets a border-radius (any value)", stylesheet.AnyBody(sample, stylesheet.Property("border-radius"))),
		Require(".bg-sample sets text color to white (#fff/white)", stylesheet.AnyBody(sample, stylesheet.Property("color").Value(stylesheet.Color("white")))),
		Require(".bg-sample sets linear-gradient background including var(--brand)",
			stylesheet.AnyBody(sample, stylesheet.Property("background", "background-image").Value(brandGradient))),
	}
}

func inlineLabelChecks(rules stylesheet.Rules) []Check {
	label := rules.Exact(".inline-label")
	alt := rules.Exact(".inline-label.alt")

	border := stylesheet.AnyOf{
		stylesheet.Property("border").Value(stylesheet.Tokens{hairline, stylesheet.Keyword{"solid"}, translucentBlack18}),
		stylesheet.Property("border-color").Value(translucentBlack18),
	}
	dashed := stylesheet.AnyOf{
		stylesheet.Property("border-style").Value(stylesheet.Keyword{"dashed"}),
		stylesheet.Property("border").Value(hasComponent("dashed")),
	}

	return []Check{
		Require("Has .inline-label { ... } rule", len(label) > 0),
		Require(".inline-label sets display to inline-block (or inline-flex)",
			stylesheet.AnyBody(label, stylesheet.Property("display").Value(stylesheet.Keyword{"inline-block", "inline-flex"}))),
		Require(".inline-label sets padding: 0.25rem 0.5rem (or close px)",
			stylesheet.AnyBody(label, stylesheet.Property("padding").Value(stylesheet.Tokens{spacingQuarter, spacingHalf}))),
		Require(".inline-label sets a 1px solid border with rgba(0,0,0,0.18) (or border-color)", stylesheet.AnyBody(label, border)),

		Require("Has .inline-label.alt { ... } rule", len(alt) > 0),
		Require(".inline-label.alt uses a different border style (e.g., dashed)", stylesheet.AnyBody(alt, dashed)),
	}
}

func typographyChecks(rules stylesheet.Rules) []Check {
	title := rules.Matching(copyTitleSelector)
	intro := rules.Matching(copyIntroSelector)

	return []Check{
		Require("Has .copy .title { ... } rule", len(title) > 0),
		Require(".copy .title sets font-size using rem", stylesheet.AnyBody(title, stylesheet.Property("font-size").Value(stylesheet.InUnits("rem")))),
		Require(".copy .title sets font-weight 600–700 (or bold)", stylesheet.AnyBody(title, stylesheet.Property("font-weight").Value(stylesheet.Weight{Min: 600, Max: 700}))),
		Require(".copy .title sets text-transform: capitalize", stylesheet.AnyBody(title, stylesheet.Property("text-transform").Value(stylesheet.Keyword{"capitalize"}))),

		Require("Has .copy .intro { ... } rule", len(intro) > 0),
		Require(".copy .intro sets font-style: italic", stylesheet.AnyBody(intro, stylesheet.Property("font-style").Value(stylesheet.Keyword{"italic"}))),
		Require(".copy .intro increases line-height (>= 1.6)", stylesheet.AnyBody(intro, stylesheet.Property("line-height").Value(relaxedLineHeight))),
		Require(".copy .intro sets margin-top: 0.25rem (or 4px)", stylesheet.AnyBody(intro, stylesheet.Property("margin-top").Value(spacingQuarter))),
	}
}

func flexLayoutChecks(rules stylesheet.Rules) []Check {
	toolbar := rules.Exact(".toolbar")
	button := rules.Exact(".btn")
	buttonHover := rules.Matching(buttonHoverSelector)
	grid := rules.Exact(".product-grid")
	item := rules.Matching(productItemSelector)

	flexSizing := stylesheet.AnyOf{
		stylesheet.Property("flex").Value(stylesheet.Tokens{unitlessOne, unitlessOne, flexBasis140}),
		stylesheet.AllOf{
			stylesheet.Property("flex-grow").Value(unitlessOne),
			stylesheet.Property("flex-shrink").Value(unitlessOne),
			stylesheet.Property("flex-basis").Value(flexBasis140),
		},
		stylesheet.Property("min-width").Value(flexBasis140),
	}
	flexCentered := stylesheet.AllOf{
		stylesheet.Property("display").Value(flexDisplay),
		stylesheet.Property("align-items").Value(centered),
		stylesheet.Property("justify-content").Value(centered),
	}

	return []Check{
		Require("Has .toolbar { ... } rule", len(toolbar) > 0),
		Require(".toolbar uses display:flex (or inline-flex)", stylesheet.AnyBody(toolbar, stylesheet.Property("display").Value(anyDisplayFlex))),
		Require(".toolbar uses justify-content: space-between", stylesheet.AnyBody(toolbar, stylesheet.Property("justify-content").Value(stylesheet.Keyword{"space-between"}))),
		Require(".toolbar uses align-items: center", stylesheet.AnyBody(toolbar, stylesheet.Property("align-items").Value(centered))),
		Require(".toolbar has a gap", stylesheet.AnyBody(toolbar, stylesheet.Property(gapProperties...).Value(toolbarGap))),

		Require("Has .btn { ... } rule", len(button) > 0),
		Require(".btn sets padding", stylesheet.AnyBody(button, stylesheet.Property("padding").Value(nonEmpty))),
		Require(".btn removes border (border: none or 0)", stylesheet.AnyBody(button, stylesheet.Property("border").Value(stylesheet.Keyword{"none", "0"}))),
		Require("Has .btn:hover { ... } rule for hover feedback", len(buttonHover) > 0),

		Require("Has .product-grid { ... } rule", len(grid) > 0),
		Require(".product-grid sets display:flex", stylesheet.AnyBody(grid, stylesheet.Property("display").Value(flexDisplay))),
		Require(".product-grid sets flex-wrap: wrap", stylesheet.AnyBody(grid, stylesheet.Property("flex-wrap").Value(stylesheet.Keyword{"wrap"}))),
		Require(".product-grid sets gap: 0.75rem (or 12px)", stylesheet.AnyBody(grid, stylesheet.Property(gapProperties...).Value(spacingThreeQuarters))),
		Require(".product-grid sets margin-top: 0.75rem (or 12px)", stylesheet.AnyBody(grid, stylesheet.Property("margin-top").Value(spacingThreeQuarters))),

		Require("Has .product-grid .item { ... } rule", len(item) > 0),
		Require(".item flexible sizing (flex: 1 1 140px OR grow/shrink/basis OR min-width:140px)", stylesheet.AnyBody(item, flexSizing)),
		Require(".item sets min-height >= 90px", stylesheet.AnyBody(item, stylesheet.Property("min-height").Value(stylesheet.AtLeast(90)))),
		Require(".item sets a soft background", stylesheet.AnyBody(item, stylesheet.Property(backgroundProperties...).Value(softTranslucent, lightHex))),
		Require(".item sets border-radius (any value)", stylesheet.AnyBody(item, stylesheet.Property("border-radius").Value(cornerRadius))),
		Require(".item centers content using flexbox", stylesheet.AnyBody(item, flexCentered)),
		Require(".item sets font-weight 700 (or bold)", stylesheet.AnyBody(item, stylesheet.Property("font-weight").Value(stylesheet.Weight{Min: 700, Max: 700}))),
	}
}

func staticBoxChecks(rules stylesheet.Rules) []Check {
	box := rules.Exact(".static-box")

	return []Check{
		Require("Has .static-box { ... } rule", len(box) > 0),
		Require(".static-box sets padding: 0.5rem 0.75rem (or close px)", stylesheet.AnyBody(box, stylesheet.Property("padding").Value(stylesheet.Tokens{spacingHalf, spacingThreeQuarters}))),
		Require(".static-box sets border-radius: 10px", stylesheet.AnyBody(box, stylesheet.Property("border-radius").Value(staticBoxCornerRadius))),
		Require(".static-box sets background rgba(0,0,0,0.05)", stylesheet.AnyBody(box, stylesheet.Property(backgroundProperties...).Value(translucentBlack05))),
		Require(".static-box sets margin-bottom: 0.5rem", stylesheet.AnyBody(box, stylesheet.Property("margin-bottom").Value(spacingHalf))),
	}
}
