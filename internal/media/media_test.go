package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nguyentantai21042004/storycut/internal/models"
)

const sampleProbe = `{
  "streams": [
    {"codec_type": "video", "width": 1080, "height": 1920, "r_frame_rate": "30/1", "avg_frame_rate": "30000/1001"},
    {"codec_type": "audio", "duration": "61.2"}
  ],
  "format": {"duration": "61.250000"}
}`

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "talk.mp4")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		probe    ProbeFunc
		path     string
		want     models.Clip
		wantKind models.Kind
	}{
		{
			name:  "video with audio",
			probe: func(string) (string, error) { return sampleProbe, nil },
			path:  path,
			want: models.Clip{
				Path:      path,
				Duration:  61250 * time.Millisecond,
				Width:     1080,
				Height:    1920,
				FrameRate: 30000.0 / 1001.0,
				HasAudio:  true,
			},
		},
		{
			name: "silent video",
			probe: func(string) (string, error) {
				return `{"streams":[{"codec_type":"video","width":640,"height":360,"avg_frame_rate":"0/0","r_frame_rate":"25/1"}],"format":{"duration":"4"}}`, nil
			},
			path: path,
			want: models.Clip{Path: path, Duration: 4 * time.Second, Width: 640, Height: 360, FrameRate: 25},
		},
		{
			name:     "missing file",
			probe:    func(string) (string, error) { return sampleProbe, nil },
			path:     filepath.Join(dir, "missing.mp4"),
			wantKind: models.KindInput,
		},
		{
			name:     "ffprobe failure",
			probe:    func(string) (string, error) { return "", errors.New("moov atom not found") },
			path:     path,
			wantKind: models.KindInput,
		},
		{
			name:     "no duration",
			probe:    func(string) (string, error) { return `{"streams":[],"format":{}}`, nil },
			path:     path,
			wantKind: models.KindInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewWithProbe(tt.probe).Probe(context.Background(), tt.path)
			if tt.wantKind != "" {
				if models.KindOf(err) != tt.wantKind {
					t.Fatalf("Probe() error = %v, want kind %s", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Probe() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Probe() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanClips(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp4", "a.MOV", "FINAL_a_story.mp4", ".hidden.mp4", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.mp4"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := ScanClips(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.MOV"), filepath.Join(dir, "b.mp4")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ScanClips() mismatch (-want +got):\n%s", diff)
	}

	if !HasOutput(filepath.Join(dir, "a.MOV")) {
		t.Error("HasOutput(a.MOV) = false, want true")
	}
	if HasOutput(filepath.Join(dir, "b.mp4")) {
		t.Error("HasOutput(b.mp4) = true, want false")
	}
}

func TestHasOutput(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		clip  string
		want  bool
	}{
		{
			name:  "titled render",
			files: []string{"talk.mp4", "FINAL_talk_Big_Day.mp4"},
			clip:  "talk.mp4",
			want:  true,
		},
		{
			name:  "untitled render",
			files: []string{"talk.mp4", "FINAL_talk.mp4"},
			clip:  "talk.mp4",
			want:  true,
		},
		{
			name:  "render of a sibling with a longer stem",
			files: []string{"talk.mp4", "talk_2.mp4", "FINAL_talk_2_Big_Day.mp4"},
			clip:  "talk.mp4",
			want:  false,
		},
		{
			name:  "sibling render does not hide own render",
			files: []string{"talk.mp4", "talk_2.mp4", "FINAL_talk_2_Big_Day.mp4", "FINAL_talk_Opening.mp4"},
			clip:  "talk.mp4",
			want:  true,
		},
		{
			name:  "longer stem sees its own render",
			files: []string{"talk.mp4", "talk_2.mp4", "FINAL_talk_2_Big_Day.mp4"},
			clip:  "talk_2.mp4",
			want:  true,
		},
		{
			name:  "prefix without separator",
			files: []string{"talk.mp4", "FINAL_talkshow_x.mp4"},
			clip:  "talk.mp4",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, name := range tt.files {
				if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
					t.Fatal(err)
				}
			}
			if got := HasOutput(filepath.Join(dir, tt.clip)); got != tt.want {
				t.Errorf("HasOutput(%s) = %v, want %v", tt.clip, got, tt.want)
			}
		})
	}
}
