// Command promo-sim prices a cart against a promotion catalog file without
// a database, or lists the badges and banners live at a given time.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/catalogfile"
	"github.com/Cheertaboi/restaurant-promotion-service/internal/engine"
	"github.com/Cheertaboi/restaurant-promotion-service/internal/models"
)

func main() {
	catalogPath := flag.String("catalog", "", "Promotion catalog, .yaml/.yml/.json (required)")
	scenarioPath := flag.String("cart", "", "Simulation scenario with cart, customer, promo_code and at")
	atStr := flag.String("at", "", "Evaluation time in RFC3339 (overrides the scenario's at; default now)")
	tz := flag.String("tz", "UTC", "Restaurant time zone")
	product := flag.String("product", "", "List badges for this product id instead of simulating")
	category := flag.String("category", "", "List badges for this category id instead of simulating")
	banners := flag.Bool("banners", false, "List home banners instead of simulating")
	flag.Parse()

	if *catalogPath == "" {
		fail("-catalog is required")
	}
	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fail("invalid -tz: %v", err)
	}

	promos, err := catalogfile.LoadCatalog(*catalogPath)
	if err != nil {
		fail("%v", err)
	}

	var scenario catalogfile.Scenario
	if *scenarioPath != "" {
		if scenario, err = catalogfile.LoadScenario(*scenarioPath); err != nil {
			fail("%v", err)
		}
	}
	if *atStr != "" {
		scenario.At = *atStr
	}
	now := time.Now().In(loc)
	if scenario.At != "" {
		t, err := time.Parse(time.RFC3339, scenario.At)
		if err != nil {
			fail("invalid at %q: use RFC3339", scenario.At)
		}
		now = t.In(loc)
	}

	snap, err := engine.NewSnapshot(promos, now)
	if err != nil {
		fail("invalid catalog: %v", err)
	}

	switch {
	case *banners:
		printJSON(orEmpty(engine.Banners(snap, now)))
	case *product != "" || *category != "":
		printJSON(orEmpty(engine.Badges(snap, *product, *category, now)))
	case *scenarioPath == "":
		fail("-cart is required unless -banners, -product or -category is given")
	default:
		res, err := engine.Simulate(snap, scenario.SimulationRequest, now)
		if err != nil {
			fail("%v", err)
		}
		printJSON(res)
	}
}

func orEmpty(p []models.Promotion) []models.Promotion {
	if p == nil {
		return []models.Promotion{}
	}
	return p
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fail("encode: %v", err)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
