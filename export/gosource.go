package export

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"strconv"
	"text/template"

	"github.com/akmonengine/keyframe"
	"github.com/akmonengine/keyframe/trs"
	"github.com/go-gl/mathgl/mgl64"
)

var goSource = template.Must(template.New("character").Funcs(template.FuncMap{
	"trs":    formatTRS,
	"string": strconv.Quote,
}).Parse(`// Code generated by bakeanim. DO NOT EDIT.

package {{.Package}}

import (
	"github.com/akmonengine/keyframe"
{{- if .HasClips}}
	"github.com/akmonengine/keyframe/trs"
{{- end}}
{{- if .HasTransforms}}
	"github.com/go-gl/mathgl/mgl64"
{{- end}}
)

var {{.Var}}Bones = []string{
{{- range .Character.Bones}}
	{{string .}},
{{- end}}
}

var {{.Var}} = &keyframe.Character{
	Name:  {{string .Character.Name}},
	Bones: {{.Var}}Bones,
	Clips: []*keyframe.Clip{
{{- range .Character.Clips}}
		{
			Name:  {{string .Name}},
			Bones: {{$.Var}}Bones,
			Frames: [][]trs.TRS{
{{- range .Frames}}
				{
{{- range .}}
					{{trs .}},
{{- end}}
				},
{{- end}}
			},
		},
{{- end}}
	},
}
`))

type goSourceData struct {
	Package       string
	Var           string
	Character     *keyframe.Character
	HasClips      bool
	HasTransforms bool
}

// WriteGoSource writes char as a gofmt-formatted Go file declaring varName in package pkg.
// Values are written with full float64 precision.
func WriteGoSource(w io.Writer, pkg, varName string, char *keyframe.Character) error {
	if err := char.Validate(); err != nil {
		return err
	}

	data := goSourceData{
		Package:       pkg,
		Var:           varName,
		Character:     char,
		HasClips:      len(char.Clips) > 0,
		HasTransforms: len(char.Clips) > 0 && len(char.Bones) > 0,
	}

	var buf bytes.Buffer
	if err := goSource.Execute(&buf, data); err != nil {
		return fmt.Errorf("export: go source: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("export: go source: %w", err)
	}

	_, err = w.Write(src)
	return err
}

func formatTRS(t trs.TRS) string {
	return fmt.Sprintf("{Translation: %s, Rotation: mgl64.Quat{W: %s, V: %s}, Scale: %s}",
		formatVec3(t.Translation), formatFloat(t.Rotation.W), formatVec3(t.Rotation.V), formatVec3(t.Scale))
}

func formatVec3(v mgl64.Vec3) string {
	return fmt.Sprintf("mgl64.Vec3{%s, %s, %s}", formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2]))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
