package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"prophet-bnb/catalog"
	"prophet-bnb/config"
	"prophet-bnb/models"
	"prophet-bnb/pipeline"
	"prophet-bnb/sources"
	"prophet-bnb/storage"
	"prophet-bnb/utils"
)

// fieldMapFlag collects repeated -field name=selector@attr definitions for
// the custom scraper.
type fieldMapFlag map[string]sources.FieldSpec

func (f fieldMapFlag) String() string { return fmt.Sprintf("%d fields", len(f)) }

func (f fieldMapFlag) Set(v string) error {
	name, rest, ok := strings.Cut(v, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=selector[@attr], got %q", v)
	}
	selector, attr, _ := strings.Cut(rest, "@")
	f[name] = sources.FieldSpec{Selector: selector, Attr: attr}
	return nil
}

func main() {
	var (
		sourceMode = flag.String("source", "demo", "data source: demo | remote | local | csv-url | scrape")

		country     = flag.String("country", "", "remote: catalog country")
		region      = flag.String("region", "", "remote: catalog region")
		city        = flag.String("city", "", "remote: catalog city")
		date        = flag.String("date", "", "remote: snapshot date (default: latest)")
		force       = flag.Bool("force", false, "remote: force fresh download")
		urlOverride = flag.String("listings-url", "", "remote: custom listings URL override")

		listingsFile = flag.String("listings-file", "", "local: path to listings CSV")
		reviewsFile  = flag.String("reviews-file", "", "local: path to reviews CSV (optional)")

		csvURL = flag.String("url", "", "csv-url: direct CSV URL")

		scrapeURL    = flag.String("scrape-url", "", "scrape: page URL")
		cardSelector = flag.String("card-selector", ".listing-card", "scrape: listing card CSS selector")
		renderJS     = flag.Bool("render-js", false, "scrape: render the page in headless Chrome first")

		priceMode   = flag.String("price-mode", "Budget", "price band: Budget | Comfort | Premium | custom")
		minPrice    = flag.Float64("min-price", models.DefaultCustomPriceRange.Min, "custom price band minimum")
		maxPrice    = flag.Float64("max-price", models.DefaultCustomPriceRange.Max, "custom price band maximum")
		minReviews  = flag.Int("min-reviews", models.DefaultReviewsRange.Min, "minimum review count")
		maxReviews  = flag.Int("max-reviews", models.DefaultReviewsRange.Max, "maximum review count")
		minStars    = flag.Float64("min-stars", models.DefaultStarsRange.Min, "minimum rating")
		maxStars    = flag.Float64("max-stars", models.DefaultStarsRange.Max, "maximum rating")
		minAvail    = flag.Int("min-availability", models.DefaultAvailabilityRange.Min, "minimum availability days")
		maxAvail    = flag.Int("max-availability", models.DefaultAvailabilityRange.Max, "maximum availability days")
		guests      = flag.String("guests", "Any", "guest group: Any | solo | duo | small | family | large")
		suggestions = flag.Int("suggestions", models.DefaultSuggestionCount, "number of suggestions to show")
	)
	fields := make(fieldMapFlag)
	flag.Var(fields, "field", "scrape: field as name=selector[@attr], repeatable (attr: text, href, src, ...)")
	flag.Parse()

	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== ProPhet-BnB analysis starting ===")
	logger.Info("Config — source: %s | timeout: %ds | retries: %d | cache: %s",
		*sourceMode, cfg.HTTPTimeoutSec, cfg.MaxRetries, cfg.CacheDir)

	pf, err := buildFilter(*priceMode, *minPrice, *maxPrice, *minReviews, *maxReviews,
		*minStars, *maxStars, *minAvail, *maxAvail, *guests, *suggestions)
	if err != nil {
		logger.Error("Invalid preferences: %v", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second}

	var src sources.DataSource
	switch *sourceMode {
	case "demo":
		src = sources.ExampleSource{}

	case "remote":
		src, err = buildRemoteSource(cfg, logger, *country, *region, *city, *date, *force, *urlOverride)
		if err != nil {
			logger.Error("Remote source: %v", err)
			os.Exit(1)
		}

	case "local":
		if *listingsFile == "" {
			logger.Error("-listings-file is required for -source local")
			os.Exit(1)
		}
		lf, err := os.Open(*listingsFile)
		if err != nil {
			logger.Error("Open listings file: %v", err)
			os.Exit(1)
		}
		defer lf.Close()

		local := &sources.LocalUploadSource{Listings: lf, Logger: logger}
		if *reviewsFile != "" {
			rf, err := os.Open(*reviewsFile)
			if err != nil {
				logger.Error("Open reviews file: %v", err)
				os.Exit(1)
			}
			defer rf.Close()
			local.Reviews = rf
		}
		src = local

	case "csv-url":
		if *csvURL == "" {
			logger.Error("-url is required for -source csv-url")
			os.Exit(1)
		}
		src = &sources.DirectURLSource{URL: *csvURL, Client: httpClient, Logger: logger}

	case "scrape":
		if *scrapeURL == "" {
			logger.Error("-scrape-url is required for -source scrape")
			os.Exit(1)
		}
		if len(fields) == 0 {
			// Defaults matching the original scraper settings panel.
			fields["name"] = sources.FieldSpec{Selector: ".name"}
			fields["price"] = sources.FieldSpec{Selector: ".price"}
			fields["image_url"] = sources.FieldSpec{Selector: "img", Attr: "src"}
		}
		if _, ok := fields["id"]; !ok {
			fields["id"] = sources.FieldSpec{Selector: "a", Attr: "href"}
		}
		src = &sources.WebScrapeSource{
			URL:          *scrapeURL,
			CardSelector: *cardSelector,
			Fields:       fields,
			RenderJS:     *renderJS,
			Client:       httpClient,
			Logger:       logger,
			Retry: &utils.RetryConfig{
				MaxAttempts: cfg.MaxRetries,
				BaseDelay:   2 * time.Second,
				MaxDelay:    30 * time.Second,
				Logger:      logger,
			},
		}

	default:
		logger.Error("Unknown source %q", *sourceMode)
		os.Exit(1)
	}

	result, err := pipeline.New(logger).Run(src, pf)
	if err != nil {
		logger.Error("Analysis failed: %v", err)
		os.Exit(1)
	}

	printReport(result)

	csvWriter, err := storage.NewCSVWriter(cfg.CSVExportPath)
	if err != nil {
		logger.Error("Failed to create CSV export: %v", err)
		os.Exit(1)
	}
	if err := csvWriter.WriteListings(result.Dataset); err != nil {
		logger.Error("CSV export failed: %v", err)
	} else {
		logger.Info("Scored dataset saved to %s", cfg.CSVExportPath)
	}
	_ = csvWriter.Close()

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
		} else {
			defer pgWriter.Close()
			if err := pgWriter.WriteListings(result.Dataset); err != nil {
				logger.Error("PostgreSQL write failed: %v", err)
			} else {
				logger.Info("Scored dataset stored in PostgreSQL (table: scored_listings)")
			}
		}
	}
}

// buildRemoteSource discovers the catalog and wires a snapshot source for
// the selected city and date.
func buildRemoteSource(cfg *config.Config, logger *utils.Logger, country, region, city, date string, force bool, urlOverride string) (sources.DataSource, error) {
	if country == "" || region == "" || city == "" {
		return nil, fmt.Errorf("-country, -region and -city are required for -source remote")
	}

	tree, err := catalog.NewDirectory(cfg, logger).Discover(false)
	if err != nil {
		return nil, err
	}

	entry := tree.Entry(country, region, city)
	if entry == nil {
		return nil, fmt.Errorf("no catalog entry for %s/%s/%s", country, region, city)
	}

	if date == "" {
		date = entry.LatestDate
		logger.Info("[remote] No date given — using latest snapshot %s", date)
	}
	version, ok := entry.Versions[date]
	if !ok {
		return nil, fmt.Errorf("no snapshot of %s on %s (latest: %s)", city, date, entry.LatestDate)
	}

	return &sources.RemoteSnapshotSource{
		Cache:       catalog.NewSnapshotCache(cfg, logger),
		Version:     version,
		City:        city,
		Date:        date,
		Force:       force,
		URLOverride: urlOverride,
		Logger:      logger,
	}, nil
}

func buildFilter(priceMode string, minPrice, maxPrice float64, minReviews, maxReviews int,
	minStars, maxStars float64, minAvail, maxAvail int, guests string, suggestions int) (models.PreferenceFilter, error) {

	pf := models.DefaultPreferenceFilter()

	mode, err := models.ParsePriceMode(priceMode)
	if err != nil {
		return pf, err
	}
	pf.PriceMode = mode
	pf.CustomPriceRange = models.PriceRange{Min: minPrice, Max: maxPrice}
	pf.ReviewsRange = models.IntRange{Min: minReviews, Max: maxReviews}
	pf.StarsRange = models.FloatRange{Min: minStars, Max: maxStars}
	pf.AvailabilityRange = models.IntRange{Min: minAvail, Max: maxAvail}
	pf.SuggestionCount = suggestions

	group, err := models.ParseOccupancyGroup(guests)
	if err != nil {
		return pf, err
	}
	pf.Occupancy = group

	return pf, nil
}

// printReport renders the run summary and the ranked suggestions.
func printReport(r *pipeline.Result) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  🏠 PROPHET-BNB RECOMMENDATIONS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Dataset\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Source        : \033[1m%s\033[0m\n", r.Label)
	fmt.Printf("  Listings      : \033[1m%d\033[0m\n", r.Summary.Listings)
	fmt.Printf("  Price column  : %s\n", r.Summary.PriceColumn)
	for _, stage := range r.Stages {
		fmt.Printf("  Model stage   : %s\n", stage)
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Averages\033[0m\n")
	fmt.Printf("  %s\n", thin)
	printAvg("Price", r.Summary.AvgPrice, "$%.2f")
	printAvg("Rating", r.Summary.AvgRating, "%.2f ★")
	printAvg("Reviews", r.Summary.AvgReviews, "%.1f")
	printAvg("Availability", r.Summary.AvgAvailability, "%.0f days")
	printAvg("Amenities", r.Summary.AvgAmenities, "%.1f")
	fmt.Println()

	fmt.Printf("\033[1;33m  Top Suggestions\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.Ranked) == 0 {
		fmt.Printf("  No listings matched your preferences.\n")
	} else {
		for i, l := range r.Ranked {
			name := l.Name
			if len(name) > 38 {
				name = name[:35] + "..."
			}
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;32m%.2f\033[0m  $%.0f/night\n",
				i+1, name, l.TotalScore, l.Price)
		}
		fmt.Printf("\n  \033[1;36mWhy #1:\033[0m %s\n", r.Justification)
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func printAvg(label string, v *float64, format string) {
	if v == nil {
		fmt.Printf("  %-13s : unavailable\n", label)
		return
	}
	fmt.Printf("  %-13s : \033[1;32m"+format+"\033[0m\n", label, *v)
}
