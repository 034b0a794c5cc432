package manifest

import (
	"net/url"
	"testing"
)

func testDownload(t *testing.T) *Download {
	t.Helper()

	u, err := url.Parse("http://download.redis.io/releases/redis-5.0.5.tar.gz")
	if err != nil {
		t.Fatalf("failed to parse url: %v", err)
	}
	return &Download{
		URI:    URI{URL: u},
		SHA512: "abc123",
	}
}

func TestValidateSource(t *testing.T) {
	dir := "/tmp/redis"

	tests := []struct {
		name     string
		source   func(t *testing.T) Source
		wantCode string
	}{
		{
			name:   "both absent is valid",
			source: func(t *testing.T) Source { return Source{} },
		},
		{
			name: "both present is valid",
			source: func(t *testing.T) Source {
				return Source{DownloadDirectory: &dir, Download: testDownload(t)}
			},
		},
		{
			name: "download without directory",
			source: func(t *testing.T) Source {
				return Source{Download: testDownload(t)}
			},
			wantCode: CodeDownloadDirectoryRequired,
		},
		{
			name: "directory without download",
			source: func(t *testing.T) Source {
				return Source{DownloadDirectory: &dir}
			},
			wantCode: CodeDownloadRequired,
		},
	}

	val := NewValidator()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := val.ValidateSource(tt.source(t))

			if tt.wantCode == "" {
				if len(errs) != 0 {
					t.Fatalf("expected valid source, got %v", errs)
				}
				return
			}

			if len(errs) != 1 {
				t.Fatalf("expected exactly one error, got %v", errs)
			}
			if errs[0].Code != tt.wantCode {
				t.Errorf("code = %q, want %q", errs[0].Code, tt.wantCode)
			}
		})
	}
}

func TestValidateSourceMissingHash(t *testing.T) {
	dir := "/tmp/redis"
	dl := testDownload(t)
	dl.SHA512 = ""

	val := NewValidator()
	errs := val.ValidateSource(Source{DownloadDirectory: &dir, Download: dl})

	if len(errs) == 0 {
		t.Fatal("expected required-hash violation")
	}
}

func TestValidateManifest(t *testing.T) {
	val := NewValidator()

	m := &Manifest{
		Name:    "redis",
		Version: "5.0.5",
		Dependencies: &Dependencies{
			Platforms: map[string]Platform{
				"ubuntu": {
					Versions: []string{"18.04"},
					Source:   &Source{Download: testDownload(t)},
				},
				"windows": {
					Versions: []string{"10"},
				},
			},
		},
	}

	errs := val.ValidateManifest(m)
	if len(errs) != 1 {
		t.Fatalf("expected one violation, got %v", errs)
	}
	if errs[0].Code != CodeDownloadDirectoryRequired {
		t.Errorf("code = %q, want %q", errs[0].Code, CodeDownloadDirectoryRequired)
	}
	if errs[0].Path != "dependencies.platforms.ubuntu.source" {
		t.Errorf("path = %q", errs[0].Path)
	}
}

func TestValidateManifestRequiredFields(t *testing.T) {
	val := NewValidator()

	errs := val.ValidateManifest(&Manifest{})
	if len(errs) != 2 {
		t.Fatalf("expected name and version violations, got %v", errs)
	}
}

func TestValidateManifestEmptyPlatformVersions(t *testing.T) {
	val := NewValidator()

	m := &Manifest{
		Name:    "redis",
		Version: "5.0.5",
		Dependencies: &Dependencies{
			Platforms: map[string]Platform{
				"ubuntu": {},
			},
		},
	}

	errs := val.ValidateManifest(m)
	if len(errs) != 1 {
		t.Fatalf("expected versions violation, got %v", errs)
	}
	if errs[0].Code != "required" {
		t.Errorf("code = %q, want required", errs[0].Code)
	}
}
