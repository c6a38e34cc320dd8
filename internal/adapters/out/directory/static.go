// Package directory resolves party locations for the tracking scheduler.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/ports"
	"supplychain/internal/pkg/errs"
)

var (
	_ ports.PartyDirectory = (*Static)(nil)
	_ ports.PartyDirectory = Layered{}
)

// Static is a fixed, read-only party directory.
type Static struct {
	locations map[string]kernel.Location
}

func NewStatic(locations map[string]kernel.Location) *Static {
	copied := make(map[string]kernel.Location, len(locations))
	for id, loc := range locations {
		copied[id] = loc
	}
	return &Static{locations: copied}
}

func (s *Static) Location(ctx context.Context, partyID string) (kernel.Location, bool, error) {
	if err := ctx.Err(); err != nil {
		return kernel.Location{}, false, err
	}
	loc, ok := s.locations[partyID]
	return loc, ok, nil
}

// ParseLocations reads "id=lat:lng" pairs separated by commas, for example
// "acme=52.52:13.40,globex=48.85:2.35". Blank input yields an empty map.
func ParseLocations(spec string) (map[string]kernel.Location, error) {
	locations := make(map[string]kernel.Location)

	var errList []error
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		id, coords, ok := strings.Cut(pair, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause("party location",
				fmt.Errorf("%q is not in id=lat:lng form", pair)))
			continue
		}

		loc, err := parseCoordinates(coords, ":")
		if err != nil {
			errList = append(errList, fmt.Errorf("party %s: %w", id, err))
			continue
		}
		locations[id] = loc
	}

	if err := errors.Join(errList...); err != nil {
		return nil, err
	}
	return locations, nil
}

func parseCoordinates(s, sep string) (kernel.Location, error) {
	latStr, lngStr, ok := strings.Cut(strings.TrimSpace(s), sep)
	if !ok {
		return kernel.Location{}, errs.NewValueIsInvalidErrorWithCause("coordinates",
			fmt.Errorf("%q is not in lat%slng form", s, sep))
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err := errors.Join(latErr, lngErr); err != nil {
		return kernel.Location{}, errs.NewValueIsInvalidErrorWithCause("coordinates", err)
	}
	return kernel.NewLocation(lat, lng)
}

// Layered consults each directory in turn and returns the first hit. A
// directory that fails is skipped; its error is returned only when no later
// directory knows the party.
type Layered []ports.PartyDirectory

func (l Layered) Location(ctx context.Context, partyID string) (kernel.Location, bool, error) {
	var errList []error
	for _, d := range l {
		loc, found, err := d.Location(ctx, partyID)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		if found {
			return loc, true, nil
		}
	}
	return kernel.Location{}, false, errors.Join(errList...)
}
