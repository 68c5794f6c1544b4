package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentstation/utc"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hf-eolus/geocatalog/pkg/builder"
	"github.com/hf-eolus/geocatalog/pkg/errors"
	"github.com/hf-eolus/geocatalog/pkg/geometry"
	"github.com/hf-eolus/geocatalog/pkg/stac"
)

var buildFlags struct {
	inputRoot           string
	outputDir           string
	collectionID        string
	title               string
	description         string
	region              string
	temporalStart       string
	temporalEnd         string
	license             string
	metadataPrefix      string
	plotsPrefix         string
	incremental         bool
	itemOverrides       string
	collectionOverrides string
	extensions          []string
}

// buildCmd assembles the catalog for one partitioned root.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a catalog from partitioned GeoParquet files",
	Long: `Build walks the input root, creates one item per partition with
spatial/temporal extent, column schema, and companion metadata/plot items,
copies the assets into the output directory, and persists the collection
with relative links.

With --incremental, partitions already present in the output catalog are
skipped and only newly discovered ones are appended.`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildFlags.inputRoot, "input-root", "", "directory where partitioned GeoParquet files are stored")
	buildCmd.Flags().StringVar(&buildFlags.outputDir, "output-dir", "", "destination directory for the catalog (collection.json, items, assets)")
	buildCmd.Flags().StringVar(&buildFlags.collectionID, "collection-id", "", "identifier for the collection")
	buildCmd.Flags().StringVar(&buildFlags.title, "title", "", "human-friendly title for the collection (derived from the id when omitted)")
	buildCmd.Flags().StringVar(&buildFlags.description, "description", "", "long-form description for the collection (defaults to title)")
	buildCmd.Flags().StringVar(&buildFlags.region, "region", "", "region name embedded in the collection")
	buildCmd.Flags().StringVar(&buildFlags.temporalStart, "temporal-start", "", "declared collection start datetime (ISO-8601)")
	buildCmd.Flags().StringVar(&buildFlags.temporalEnd, "temporal-end", "", "declared collection end datetime (ISO-8601)")
	buildCmd.Flags().StringVar(&buildFlags.license, "license", "proprietary", "collection license string")
	buildCmd.Flags().StringVar(&buildFlags.metadataPrefix, "metadata-prefix", "", "directory containing per-partition metadata sidecars")
	buildCmd.Flags().StringVar(&buildFlags.plotsPrefix, "plots-prefix", "", "directory containing per-partition diagnostic plots")
	buildCmd.Flags().BoolVar(&buildFlags.incremental, "incremental", false, "skip partitions already present in the output catalog")
	buildCmd.Flags().StringVar(&buildFlags.itemOverrides, "item-overrides", "", "JSON or YAML file deep-merged into every item")
	buildCmd.Flags().StringVar(&buildFlags.collectionOverrides, "collection-overrides", "", "JSON or YAML file deep-merged into the collection")
	buildCmd.Flags().StringSliceVar(&buildFlags.extensions, "extensions", builder.DefaultExtensions, "accepted file extensions")

	for _, required := range []string{"input-root", "output-dir", "collection-id"} {
		if err := buildCmd.MarkFlagRequired(required); err != nil {
			panic(fmt.Sprintf("Failed to mark %s required: %v", required, err))
		}
	}
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	b, err := builder.New(*cfg)
	if err != nil {
		return err
	}
	summary, err := b.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Catalog saved to %s\n", buildFlags.outputDir)
	fmt.Printf("- Items: %d data, %d metadata, %d plots\n",
		summary.DataItems, summary.MetadataItems, summary.PlotItems)
	if summary.BBox != nil {
		fmt.Printf("- Spatial extent: %v\n", summary.BBox.Slice())
	}
	if summary.Interval.Start != nil || summary.Interval.End != nil {
		fmt.Printf("- Temporal extent: %s -> %s\n",
			formatBound(summary.Interval.Start), formatBound(summary.Interval.End))
	}
	return nil
}

// buildConfig translates flags into a builder configuration.
func buildConfig() (*builder.Config, error) {
	osFS := afero.NewOsFs()

	declared, err := declaredPeriod()
	if err != nil {
		return nil, err
	}
	itemOverrides, err := loadOverrides(buildFlags.itemOverrides)
	if err != nil {
		return nil, err
	}
	collectionOverrides, err := loadOverrides(buildFlags.collectionOverrides)
	if err != nil {
		return nil, err
	}

	title := buildFlags.title
	if title == "" {
		title = titleFromID(buildFlags.collectionID)
	}

	cfg := &builder.Config{
		Input:               builder.Source{FS: osFS, Root: filepath.Clean(buildFlags.inputRoot)},
		Output:              builder.Source{FS: osFS, Root: filepath.Clean(buildFlags.outputDir)},
		CollectionID:        buildFlags.collectionID,
		Title:               title,
		Description:         buildFlags.description,
		Region:              buildFlags.region,
		License:             buildFlags.license,
		DeclaredPeriod:      declared,
		Extensions:          buildFlags.extensions,
		Incremental:         buildFlags.incremental,
		ItemOverrides:       itemOverrides,
		CollectionOverrides: collectionOverrides,
	}
	if buildFlags.metadataPrefix != "" {
		cfg.Metadata = &builder.Source{FS: osFS, Root: filepath.Clean(buildFlags.metadataPrefix)}
	}
	if buildFlags.plotsPrefix != "" {
		cfg.Plots = &builder.Source{FS: osFS, Root: filepath.Clean(buildFlags.plotsPrefix)}
	}
	return cfg, nil
}

// declaredPeriod validates and parses the temporal override flags.
func declaredPeriod() (geometry.Interval, error) {
	var interval geometry.Interval
	if buildFlags.temporalStart != "" {
		start, err := parseInstant(buildFlags.temporalStart)
		if err != nil {
			return interval, errors.WrapValidation("temporal-start", err)
		}
		interval.Start = &start
	}
	if buildFlags.temporalEnd != "" {
		end, err := parseInstant(buildFlags.temporalEnd)
		if err != nil {
			return interval, errors.WrapValidation("temporal-end", err)
		}
		interval.End = &end
	}
	return interval, nil
}

// parseInstant parses an ISO-8601 instant, assuming UTC for naive values.
func parseInstant(s string) (utc.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return utc.New(t), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return utc.Time{}, err
	}
	return utc.New(t.UTC()), nil
}

// loadOverrides reads and parses an override document. YAML files are
// detected by extension; everything else is parsed as JSON. A malformed
// document is fatal for the run.
func loadOverrides(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var overrides map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &overrides); err != nil {
			return nil, errors.WrapParse("yaml", path, err)
		}
	default:
		if err := json.Unmarshal(raw, &overrides); err != nil {
			return nil, errors.WrapParse("json", path, err)
		}
	}
	return overrides, nil
}

// titleFromID derives a display title from a collection identifier.
func titleFromID(id string) string {
	words := strings.NewReplacer("-", " ", "_", " ").Replace(id)
	return cases.Title(language.English).String(words)
}

// formatBound formats an optional interval bound for the summary line.
func formatBound(t *utc.Time) string {
	if t == nil {
		return "open"
	}
	return t.Format(stac.DatetimeFormat)
}
