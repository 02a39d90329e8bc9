// pkg/probe/version.go

package probe

import (
	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-version"

	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/check_err"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/nagios"
)

// MinimumVersion is the first release with well-defined message priorities.
const MinimumVersion = nagios.MinimumVersion

var minimum = version.Must(version.NewVersion(MinimumVersion))

// CheckVersion compares a reported product version against MinimumVersion.
// Segments compare numerically and missing segments count as zero, so
// "6.10" is newer than "6.2.0" and "6.2" equals it. Pre-release or build
// suffixes ("6.2.0-1", "6.2.0-beta") do not make a version older.
func CheckVersion(reported string) error {
	v, err := version.NewVersion(reported)
	if err != nil {
		return cerr.Wrapf(err, "parse product version %q", reported)
	}
	if compareSegments(v.Segments64(), minimum.Segments64()) < 0 {
		return check_err.NewVersionError(reported, MinimumVersion)
	}
	return nil
}

func compareSegments(a, b []int64) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var x, y int64
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}
