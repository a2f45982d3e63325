// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// MinimumVersion is the oldest server release this client can talk to.
const MinimumVersion = "0.0.14"

// CompareVersions compares dotted numeric versions and returns -1, 0 or 1.
//
// Only the first min(len(a), len(b)) segments are compared, so "1.2" and "1.2.0"
// are equal and so are "1.2" and "1.2.7".
func CompareVersions(a, b string) (int, error) {
	pa, err := splitVersion(a)
	if err != nil {
		return 0, err
	}
	pb, err := splitVersion(b)
	if err != nil {
		return 0, err
	}
	for i := 0; i < len(pa) && i < len(pb); i++ {
		switch {
		case pa[i] > pb[i]:
			return 1, nil
		case pa[i] < pb[i]:
			return -1, nil
		}
	}
	return 0, nil
}

func splitVersion(v string) ([]int, error) {
	segs := strings.Split(v, ".")
	out := make([]int, len(segs))
	for i, s := range segs {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrMalformedVersion, v, err)
		}
		out[i] = n
	}
	return out, nil
}

// CheckVersion re-runs discovery against the live server and fails with
// *VersionIncompatibleError when it is older than MinimumVersion. The pinned
// descriptor is left untouched.
func (c *Client) CheckVersion(ctx context.Context) error {
	d, err := c.discover(ctx)
	if err != nil {
		return err
	}
	if d.Version == "" {
		return ErrNoVersion
	}
	cmp, err := CompareVersions(d.Version, MinimumVersion)
	if err != nil {
		return err
	}
	if cmp < 0 {
		return &VersionIncompatibleError{Actual: d.Version, Required: MinimumVersion}
	}
	return nil
}
