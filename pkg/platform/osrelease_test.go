package platform

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseOSRelease(t *testing.T) {
	const ubuntu = `
NAME="Ubuntu"
VERSION="18.04.3 LTS (Bionic Beaver)"
ID=ubuntu
ID_LIKE=debian
VERSION_ID="18.04"
PRETTY_NAME="Ubuntu 18.04.3 LTS"

# comment line
HOME_URL="https://www.ubuntu.com/"
`

	id, like, version := parseOSRelease(strings.NewReader(ubuntu))
	if id != "ubuntu" {
		t.Errorf("id = %q, want ubuntu", id)
	}
	if !reflect.DeepEqual(like, []string{"debian"}) {
		t.Errorf("id_like = %v, want [debian]", like)
	}
	if version != "18.04" {
		t.Errorf("version_id = %q, want 18.04", version)
	}
}

func TestParseOSReleaseMultipleLike(t *testing.T) {
	const centos = `
ID="centos"
ID_LIKE="rhel fedora"
VERSION_ID="7"
`

	id, like, version := parseOSRelease(strings.NewReader(centos))
	if id != "centos" {
		t.Errorf("id = %q, want centos", id)
	}
	if !reflect.DeepEqual(like, []string{"rhel", "fedora"}) {
		t.Errorf("id_like = %v", like)
	}
	if version != "7" {
		t.Errorf("version_id = %q, want 7", version)
	}
}

func TestParseOSReleaseEmpty(t *testing.T) {
	id, like, version := parseOSRelease(strings.NewReader(""))
	if id != "" || like != nil || version != "" {
		t.Errorf("empty input should yield zero values, got %q %v %q", id, like, version)
	}
}
