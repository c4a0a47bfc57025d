package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"git.nurpath.academy/nurpath/portal/src/auth"
	"git.nurpath.academy/nurpath/portal/src/config"
	"git.nurpath.academy/nurpath/portal/src/logging"
	"git.nurpath.academy/nurpath/portal/src/oops"
	"git.nurpath.academy/nurpath/portal/src/parsing"
	"git.nurpath.academy/nurpath/portal/src/portalurl"
	"github.com/Masterminds/sprig"
	"github.com/teacat/noire"
)

const (
	Dayish   = time.Hour * 24
	Weekish  = Dayish * 7
	Monthish = Dayish * 30
	Yearish  = Dayish * 365
)

//go:embed src
var embeddedTemplateFs embed.FS
var embeddedTemplates map[string]*template.Template

//go:embed public
var embeddedPublicFs embed.FS

func getTemplatesFromFS(templateFS fs.FS) (map[string]*template.Template, map[string]error) {
	templates := make(map[string]*template.Template)
	errs := make(map[string]error)

	files, err := fs.ReadDir(templateFS, "src")
	if err != nil {
		errs["src"] = err
		return templates, errs
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".html") {
			continue
		}

		t := template.New(f.Name())
		t = t.Funcs(sprig.FuncMap())
		t = t.Funcs(PortalTemplateFuncs)
		t, err := t.ParseFS(templateFS,
			"src/layouts/*",
			"src/include/*",
			"src/"+f.Name(),
		)
		if err != nil {
			errs[f.Name()] = err
			continue
		}

		templates[f.Name()] = t
	}

	return templates, errs
}

func Init() {
	var errs map[string]error
	type errEntry struct {
		name string
		err  error
	}

	embeddedTemplates, errs = getTemplatesFromFS(embeddedTemplateFs)
	if len(errs) > 0 {
		var errsList []errEntry
		for filename, err := range errs {
			errsList = append(errsList, errEntry{filename, err})
		}
		sort.Slice(errsList, func(i, j int) bool {
			return strings.Compare(errsList[i].name, errsList[j].name) < 0
		})
		for _, err := range errsList {
			logging.Error().Str("filename", err.name).Err(err.err).Msg("Failed to parse template")
		}
		panic("Failed to parse templates; see above")
	}
}

func GetTemplate(name string) *template.Template {
	var templates map[string]*template.Template
	if config.Config.Dev.LiveTemplates {
		var errs map[string]error
		templates, errs = getTemplatesFromFS(os.DirFS("src/templates"))
		if errs[name] != nil {
			panic(oops.New(errs[name], "Error in template %s", name))
		}
	} else {
		if embeddedTemplates == nil {
			Init()
		}
		templates = embeddedTemplates
	}

	template, hasTemplate := templates[name]
	if !hasTemplate {
		panic(oops.New(nil, "Template not found: %s", name))
	}
	return template
}

// Static files served under portalurl.StaticPath.
func PublicFS() fs.FS {
	if config.Config.Dev.LiveTemplates {
		return os.DirFS("src/templates/public")
	}
	sub, err := fs.Sub(embeddedPublicFs, "public")
	if err != nil {
		panic(err)
	}
	return sub
}

var phaseColors = map[string]string{
	"Drafting":   "8a8f98",
	"Enrollment": "2f7dbd",
	"Active":     "2e8b57",
	"Revision":   "c98a1a",
	"Archived":   "6b5b7b",
}

// The badge color for a course phase. Unknown phases are gray.
func PhaseColor(phase string) noire.Color {
	hex, ok := phaseColors[phase]
	if !ok {
		hex = phaseColors["Drafting"]
	}
	return noire.NewHex(hex)
}

func RelativeDate(t time.Time, now time.Time) string {
	str := func(primary int, primaryName string, secondary int, secondaryName string) string {
		result := fmt.Sprintf("%d %s", primary, primaryName)
		if primary != 1 {
			result += "s"
		}
		if secondary > 0 {
			result += fmt.Sprintf(", %d %s", secondary, secondaryName)

			if secondary != 1 {
				result += "s"
			}
		}

		return result
	}

	delta := now.Sub(t)
	suffix := " ago"
	if delta < 0 {
		delta = -delta
		suffix = " from now"
	}

	var result string
	if delta < time.Minute {
		return "just now"
	} else if delta < time.Hour {
		result = str(int(delta.Minutes()), "minute", 0, "")
	} else if delta < Dayish {
		result = str(int(delta/time.Hour), "hour", int((delta%time.Hour)/time.Minute), "minute")
	} else if delta < Weekish {
		result = str(int(delta/Dayish), "day", int((delta%Dayish)/time.Hour), "hour")
	} else if delta < Monthish {
		result = str(int(delta/Weekish), "week", int((delta%Weekish)/Dayish), "day")
	} else if delta < Yearish {
		result = str(int(delta/Monthish), "month", int((delta%Monthish)/Weekish), "week")
	} else {
		result = str(int(delta/Yearish), "year", int((delta%Yearish)/Monthish), "month")
	}
	return result + suffix
}

var PortalTemplateFuncs = template.FuncMap{
	"add": func(a int, b ...int) int {
		for _, num := range b {
			a += num
		}
		return a
	},
	"strjoin": func(strs ...string) string {
		return strings.Join(strs, "")
	},
	"absolutedate": func(t time.Time) string {
		return t.UTC().Format("January 2, 2006, 3:04pm")
	},
	"absoluteshortdate": func(t time.Time) string {
		return t.UTC().Format("January 2, 2006")
	},
	"rfc3339": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
	"relativedate": func(t time.Time) string {
		return RelativeDate(t, time.Now())
	},
	"alpha": func(alpha float64, color noire.Color) noire.Color {
		color.Alpha = alpha
		return color
	},
	"brighten": func(amount float64, color noire.Color) noire.Color {
		return color.Tint(amount)
	},
	"darken": func(amount float64, color noire.Color) noire.Color {
		return color.Shade(amount)
	},
	"color2css": func(color noire.Color) template.CSS {
		return template.CSS(color.HTML())
	},
	"phasecolor": PhaseColor,
	"csrftoken": func(s Session) template.HTML {
		return template.HTML(fmt.Sprintf(`<input type="hidden" name="%s" value="%s">`, auth.CSRFFieldName, template.HTMLEscapeString(s.CSRFToken)))
	},
	"csrftokenjs": func(s Session) template.JS {
		return template.JS(fmt.Sprintf(`{ "field": "%s", "token": "%s" }`, auth.CSRFFieldName, template.JSEscapeString(s.CSRFToken)))
	},
	"markdown": func(source string) template.HTML {
		return markdownToHTML(source)
	},
	"linkify": func(text string) template.HTML {
		return template.HTML(parsing.Linkify(text))
	},
	"percent": func(v int) string {
		return fmt.Sprintf("%d%%", v)
	},
	"deref": func(v *int) int {
		if v == nil {
			return 0
		}
		return *v
	},
	"static": func(filepath string) string {
		return portalurl.StaticUrl(filepath, nil)
	},
	"timehtml": func(formatted string, t time.Time) template.HTML {
		iso := t.UTC().Format(time.RFC3339)
		return template.HTML(fmt.Sprintf(`<time datetime="%s">%s</time>`, iso, template.HTMLEscapeString(formatted)))
	},
	"lastidx": func(idx int, l int) bool {
		return idx == l-1
	},
}
