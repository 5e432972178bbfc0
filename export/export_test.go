package export

import (
	"bytes"
	"errors"
	"go/parser"
	"go/token"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akmonengine/keyframe"
	"github.com/akmonengine/keyframe/trs"
	"github.com/go-gl/mathgl/mgl64"
)

// float32 storage
const precision = 1e-6

func testCharacter() *keyframe.Character {
	bones := []string{"torso", "head"}
	turn := mgl64.QuatRotate(math.Pi/3, mgl64.Vec3{0, 1, 0})

	walk := &keyframe.Clip{
		Name:  "walk",
		Bones: bones,
		Frames: [][]trs.TRS{
			{trs.Identity(), trs.New(mgl64.Vec3{0, 1.5, 0}, mgl64.QuatIdent(), mgl64.Vec3{1, 1, 1})},
			{trs.New(mgl64.Vec3{0.25, 0, 0}, turn, mgl64.Vec3{1, 2, 1}), trs.New(mgl64.Vec3{0.25, 1.5, 0}, turn, mgl64.Vec3{-1, 1, 1})},
			{trs.New(mgl64.Vec3{0.5, 0, 0}, turn.Inverse(), mgl64.Vec3{1, 1, 1}), trs.Identity()},
		},
	}
	idle := &keyframe.Clip{
		Name:   "idle",
		Bones:  bones,
		Frames: [][]trs.TRS{{trs.Identity(), trs.Identity()}},
	}

	return &keyframe.Character{Name: "knight", Bones: bones, Clips: []*keyframe.Clip{walk, idle}}
}

func characterAlmostEqual(t *testing.T, got, want *keyframe.Character) {
	t.Helper()

	if got.Name != want.Name {
		t.Errorf("Name = %q, want %q", got.Name, want.Name)
	}
	if strings.Join(got.Bones, ",") != strings.Join(want.Bones, ",") {
		t.Fatalf("Bones = %v, want %v", got.Bones, want.Bones)
	}
	if len(got.Clips) != len(want.Clips) {
		t.Fatalf("len(Clips) = %d, want %d", len(got.Clips), len(want.Clips))
	}
	for i, clip := range want.Clips {
		decoded := got.Clips[i]
		if decoded.Name != clip.Name {
			t.Errorf("clip %d Name = %q, want %q", i, decoded.Name, clip.Name)
		}
		if decoded.FrameCount() != clip.FrameCount() {
			t.Fatalf("clip %q has %d frames, want %d", clip.Name, decoded.FrameCount(), clip.FrameCount())
		}
		for k := range clip.Frames {
			for b := range clip.Frames[k] {
				if !decoded.Frames[k][b].ApproxEqual(clip.Frames[k][b], precision) {
					t.Errorf("clip %q frame %d bone %d = %+v, want %+v", clip.Name, k, b, decoded.Frames[k][b], clip.Frames[k][b])
				}
			}
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	char := testCharacter()

	doc, err := Encode(char)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(doc.Nodes) != 2 || len(doc.Animations) != 2 {
		t.Fatalf("document has %d nodes and %d animations, want 2 and 2", len(doc.Nodes), len(doc.Animations))
	}
	if len(doc.Animations[0].Channels) != 6 {
		t.Errorf("walk has %d channels, want 6", len(doc.Animations[0].Channels))
	}

	decoded, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	characterAlmostEqual(t, decoded, char)
}

func TestSaveLoad(t *testing.T) {
	for _, name := range []string{"knight.gltf", "knight.glb"} {
		t.Run(name, func(t *testing.T) {
			char := testCharacter()
			path := filepath.Join(t.TempDir(), name)

			if err := Save(path, char); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			characterAlmostEqual(t, loaded, char)
		})
	}
}

func TestSaveLoad_NoBones(t *testing.T) {
	char := &keyframe.Character{
		Name:  "empty",
		Clips: []*keyframe.Clip{{Name: "wait", Frames: make([][]trs.TRS, 5)}},
	}
	path := filepath.Join(t.TempDir(), "empty.gltf")

	if err := Save(path, char); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Clips) != 1 || loaded.Clips[0].FrameCount() != 5 || loaded.Clips[0].BoneCount() != 0 {
		t.Errorf("loaded = %+v, want one clip of 5 empty frames", loaded.Clips)
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Run("missing frame count", func(t *testing.T) {
		doc, _ := Encode(testCharacter())
		doc.Animations[0].Extras = nil

		if _, err := Decode(doc); !errors.Is(err, ErrMalformedClip) {
			t.Errorf("Decode() error = %v, want ErrMalformedClip", err)
		}
	})

	t.Run("missing channel", func(t *testing.T) {
		doc, _ := Encode(testCharacter())
		doc.Animations[0].Channels = doc.Animations[0].Channels[:5]

		if _, err := Decode(doc); !errors.Is(err, ErrMalformedClip) {
			t.Errorf("Decode() error = %v, want ErrMalformedClip", err)
		}
	})

	t.Run("frame count mismatch", func(t *testing.T) {
		doc, _ := Encode(testCharacter())
		doc.Animations[0].Extras = map[string]any{framesKey: 4}

		if _, err := Decode(doc); !errors.Is(err, ErrMalformedClip) {
			t.Errorf("Decode() error = %v, want ErrMalformedClip", err)
		}
	})
}

func TestEncode_RejectsInvalidCharacter(t *testing.T) {
	char := testCharacter()
	char.Clips[1].Bones = []string{"head", "torso"}

	if _, err := Encode(char); !errors.Is(err, keyframe.ErrBoneOrder) {
		t.Errorf("Encode() error = %v, want ErrBoneOrder", err)
	}
}

func TestWriteGoSource(t *testing.T) {
	tests := []struct {
		name    string
		char    *keyframe.Character
		imports []string
	}{
		{
			name:    "clips with bones",
			char:    testCharacter(),
			imports: []string{"keyframe", "trs", "mgl64"},
		},
		{
			name:    "clips without bones",
			char:    &keyframe.Character{Name: "empty", Clips: []*keyframe.Clip{{Name: "wait", Frames: make([][]trs.TRS, 2)}}},
			imports: []string{"keyframe", "trs"},
		},
		{
			name:    "no clips",
			char:    &keyframe.Character{Name: "bare", Bones: []string{"root"}},
			imports: []string{"keyframe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteGoSource(&buf, "assets", "Knight", tt.char); err != nil {
				t.Fatalf("WriteGoSource() error = %v", err)
			}

			file, err := parser.ParseFile(token.NewFileSet(), "knight.go", buf.Bytes(), parser.ParseComments)
			if err != nil {
				t.Fatalf("generated source does not parse: %v\n%s", err, buf.String())
			}
			if file.Name.Name != "assets" {
				t.Errorf("package = %q, want assets", file.Name.Name)
			}
			if len(file.Imports) != len(tt.imports) {
				t.Errorf("%d imports, want %v", len(file.Imports), tt.imports)
			}
			for _, name := range tt.imports {
				if !strings.Contains(buf.String(), "/"+name+"\"") {
					t.Errorf("missing import of %s", name)
				}
			}
			if !strings.Contains(buf.String(), "var Knight = &keyframe.Character{") {
				t.Errorf("missing Knight declaration:\n%s", buf.String())
			}
		})
	}
}

func TestWriteGoSource_FullPrecision(t *testing.T) {
	char := testCharacter()
	char.Clips[0].Frames[0][0].Translation = mgl64.Vec3{0.1, 1e-20, -3}

	var buf bytes.Buffer
	if err := WriteGoSource(&buf, "assets", "Knight", char); err != nil {
		t.Fatalf("WriteGoSource() error = %v", err)
	}
	if !strings.Contains(buf.String(), "mgl64.Vec3{0.1, 1e-20, -3}") {
		t.Errorf("translation not written exactly:\n%s", buf.String())
	}
}
