package platform

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Family is a Linux distribution group sharing a package manager.
type Family string

const (
	FamilyDebian Family = "debian"
	FamilyRHEL   Family = "rhel"
	FamilyArch   Family = "arch"
)

// DistroProbe reports the distribution family of the running Linux host.
type DistroProbe func() (Family, error)

var osReleaseFiles = []string{"/etc/os-release", "/usr/lib/os-release"}

// OSRelease detects the family from os-release(5).
func OSRelease() (Family, error) {
	for _, name := range osReleaseFiles {
		f, err := os.Open(name)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		fields, err := ParseOSRelease(f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", name, err)
		}
		return Classify(fields["NAME"], fields["ID"], fields["ID_LIKE"])
	}
	return "", fmt.Errorf("%w: no os-release file", ErrUnknownDistribution)
}

// ParseOSRelease reads KEY=value lines, dropping comments and quotes.
func ParseOSRelease(r io.Reader) (map[string]string, error) {
	fields := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[k] = strings.Trim(v, `"'`)
	}
	return fields, sc.Err()
}

var namePrefixes = []struct {
	prefix string
	family Family
}{
	{"RHEL", FamilyRHEL},
	{"CENTOS LINUX", FamilyRHEL},
	{"FEDORA", FamilyRHEL},
	{"AMAZON LINUX", FamilyRHEL},
	{"DEBIAN", FamilyDebian},
	{"UBUNTU", FamilyDebian},
	{"LINUXMINT", FamilyDebian},
	{"RASPBIAN GNU/LINUX", FamilyDebian},
	{"ARCH", FamilyArch},
}

var ids = map[string]Family{
	"debian":    FamilyDebian,
	"ubuntu":    FamilyDebian,
	"linuxmint": FamilyDebian,
	"raspbian":  FamilyDebian,
	"rhel":      FamilyRHEL,
	"centos":    FamilyRHEL,
	"fedora":    FamilyRHEL,
	"amzn":      FamilyRHEL,
	"arch":      FamilyArch,
}

// Classify maps a distribution to its family. The pretty name is matched by
// prefix first; ID and then each ID_LIKE token are used as fallbacks.
func Classify(name, id, idLike string) (Family, error) {
	upper := strings.ToUpper(name)
	for _, p := range namePrefixes {
		if strings.HasPrefix(upper, p.prefix) {
			return p.family, nil
		}
	}
	for _, tok := range append([]string{id}, strings.Fields(idLike)...) {
		if f, ok := ids[strings.ToLower(tok)]; ok {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDistribution, name)
}
