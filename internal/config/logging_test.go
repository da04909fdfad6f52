package config

import (
	"reflect"
	"testing"

	"github.com/smazurov/loopthru/internal/logging"
)

func TestLoadLoggingFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    logging.Config
		wantErr bool
	}{
		{
			name:    "flat module keys",
			content: "[logging]\nlevel = \"debug\"\nvideo = \"warn\"\naudio = \"error\"\n",
			want:    logging.Config{Level: "debug", Format: "text", Modules: map[string]string{"video": "warn", "audio": "error"}},
		},
		{
			name:    "nested modules table",
			content: "[logging]\nformat = \"json\"\n[logging.modules]\nlifecycle = \"debug\"\n",
			want:    logging.Config{Level: "info", Format: "json", Modules: map[string]string{"lifecycle": "debug"}},
		},
		{
			name:    "no logging table",
			content: "[video]\nwidth = 320\n",
			want:    logging.Config{Level: "info", Format: "text", Modules: map[string]string{}},
		},
		{
			name:    "invalid level",
			content: "[logging]\nlevel = \"loud\"\n",
			wantErr: true,
		},
		{
			name:    "invalid module level",
			content: "[logging]\nvideo = \"chatty\"\n",
			wantErr: true,
		},
		{
			name:    "broken toml",
			content: "[logging\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadLoggingFile(writeTemp(t, tt.content))
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadLoggingFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LoadLoggingFile() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadLoggingFileEmptyPath(t *testing.T) {
	cfg, err := LoadLoggingFile("")
	if err != nil || cfg.Level != "info" {
		t.Errorf("LoadLoggingFile(\"\") = %+v, %v", cfg, err)
	}
}
