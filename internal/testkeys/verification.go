package testkeys

import (
	"fmt"
	"log"
	"sort"
)

// verifyCurves checks the stored curves against the keying invariants:
// keys sorted and unique per curve, cyclic keys remapped into the
// configured range, and exactly one cycle modifier on cyclic curves.
func verifyCurves(config *Config, curvesByObject map[string][]Curve, cyclic map[string]bool) error {
	log.Println("Verifying curves...")

	if len(curvesByObject) == 0 {
		return fmt.Errorf("no curves to verify")
	}

	var problems []string
	for objectID, curves := range curvesByObject {
		for _, c := range curves {
			if err := verifySingleCurve(objectID, c, cyclic[objectID]); err != nil {
				problems = append(problems, err.Error())
			}
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		for _, p := range problems {
			log.Printf("Verification problem: %s", p)
		}
		return fmt.Errorf("%d curve verification problems", len(problems))
	}

	displayCurveSummary(curvesByObject, config.Verbose)

	log.Println("Curve verification completed")
	return nil
}

// verifySingleCurve checks one curve's invariants.
func verifySingleCurve(objectID string, c Curve, expectCyclic bool) error {
	// Keys must be strictly ordered by time
	for i := 1; i < len(c.Keyframes); i++ {
		if c.Keyframes[i].Time <= c.Keyframes[i-1].Time {
			return fmt.Errorf("%s/%s: keys not strictly ordered at index %d", objectID, c.Channel, i)
		}
	}

	if expectCyclic {
		if !c.Cyclic {
			return fmt.Errorf("%s/%s: expected cyclic curve", objectID, c.Channel)
		}

		// Remapped keys must land inside [start, end)
		for _, k := range c.Keyframes {
			if k.Time < c.RangeStart || k.Time >= c.RangeEnd {
				return fmt.Errorf("%s/%s: key at %.3f outside range [%.1f, %.1f)",
					objectID, c.Channel, k.Time, c.RangeStart, c.RangeEnd)
			}
		}

		// Cyclic curves with keys must carry the cycle modifier
		if len(c.Keyframes) > 0 && !c.HasCycleModifier {
			return fmt.Errorf("%s/%s: cyclic curve missing cycle modifier", objectID, c.Channel)
		}
	}

	return nil
}

// displayCurveSummary shows per-channel statistics across all objects.
func displayCurveSummary(curvesByObject map[string][]Curve, verbose bool) {
	byChannel := make(map[string]int)
	keysByChannel := make(map[string]int)
	for _, curves := range curvesByObject {
		for _, c := range curves {
			byChannel[c.Channel]++
			keysByChannel[c.Channel] += len(c.Keyframes)
		}
	}

	channels := make([]string, 0, len(byChannel))
	for ch := range byChannel {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	log.Printf("Curve summary across %d objects:", len(curvesByObject))
	for _, ch := range channels {
		log.Printf("   %-12s curves: %d, keyframes: %d", ch, byChannel[ch], keysByChannel[ch])
	}

	if verbose {
		// Show densest curves
		type density struct {
			objectID string
			channel  string
			keys     int
		}
		var all []density
		for objectID, curves := range curvesByObject {
			for _, c := range curves {
				all = append(all, density{objectID, c.Channel, len(c.Keyframes)})
			}
		}
		sort.Slice(all, func(i, j int) bool { return all[i].keys > all[j].keys })

		topN := 10
		if len(all) < topN {
			topN = len(all)
		}
		log.Printf("Densest %d curves:", topN)
		for i := 0; i < topN; i++ {
			d := all[i]
			log.Printf("   %d. %s/%s - %d keyframes", i+1, d.objectID, d.channel, d.keys)
		}
	}
}
