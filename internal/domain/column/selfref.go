package column

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/kailas-cloud/resultgrid/internal/domain"
)

var apiVersionSegment = regexp.MustCompile(`^v\d+$`)

// SelfRef is a parsed self-reference identifier:
// <deployment>/v<N>/<entityType>/<org>/<project>/<rest...>.
type SelfRef struct {
	Deployment string
	APIVersion string
	EntityType string
	Org        string
	Project    string
	Rest       []string
}

// ParseSelf splits a self-reference URL into its components.
func ParseSelf(self string) (SelfRef, error) {
	if self == "" {
		return SelfRef{}, fmt.Errorf("%w: empty", domain.ErrInvalidSelfReference)
	}
	u, err := url.Parse(self)
	if err != nil {
		return SelfRef{}, fmt.Errorf("%w: %w", domain.ErrInvalidSelfReference, err)
	}

	segments := strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
	for i, seg := range segments {
		if !apiVersionSegment.MatchString(seg) {
			continue
		}
		if len(segments) < i+4 {
			break
		}
		ref := SelfRef{
			APIVersion: seg,
			EntityType: unescape(segments[i+1]),
			Org:        unescape(segments[i+2]),
			Project:    unescape(segments[i+3]),
		}
		for _, rest := range segments[i+4:] {
			ref.Rest = append(ref.Rest, unescape(rest))
		}
		base := *u
		base.Path = "/" + strings.Join(segments[:i], "/")
		base.RawPath = ""
		base.RawQuery = ""
		base.Fragment = ""
		ref.Deployment = strings.TrimSuffix(base.String(), "/")
		return ref, nil
	}
	return SelfRef{}, fmt.Errorf("%w: %q has no org/project segments", domain.ErrInvalidSelfReference, self)
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}
