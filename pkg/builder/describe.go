package builder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hf-eolus/geocatalog/pkg/tabular"
)

// Logical column types form a closed set; anything the underlying format
// reports that does not map cleanly defaults to string.
const (
	TypeInteger  = "integer"
	TypeNumber   = "number"
	TypeBoolean  = "boolean"
	TypeDatetime = "datetime"
	TypeDate     = "date"
	TypeString   = "string"
)

// ClassifyColumn maps an abstract native-type tag to a logical column type.
// known is false when the tag had no direct mapping and the string default
// was applied.
func ClassifyColumn(kind tabular.Kind) (logical string, known bool) {
	switch kind {
	case tabular.KindInteger:
		return TypeInteger, true
	case tabular.KindFloat:
		return TypeNumber, true
	case tabular.KindBoolean:
		return TypeBoolean, true
	case tabular.KindTimestamp:
		return TypeDatetime, true
	case tabular.KindDate:
		return TypeDate, true
	case tabular.KindString:
		return TypeString, true
	default:
		return TypeString, false
	}
}

// columnGlossary maps well-known column names of the interpolation product
// to human-readable descriptions.
var columnGlossary = map[string]string{
	"node_id":              "String identifier of the grid node; original model nodes retain their native ID while generated mesh points receive sequential IDs or test point names.",
	"x_local":              "Local X offset (metres) from the south-west corner of the projected interpolation grid.",
	"y_local":              "Local Y offset (metres) from the south-west corner of the projected interpolation grid.",
	"is_orig":              "Boolean flag: true marks nodes coinciding with the native model grid, false marks nodes created for interpolation.",
	"x":                    "Longitude in decimal degrees after reprojecting the grid to WGS 84.",
	"y":                    "Latitude in decimal degrees after reprojecting the grid to WGS 84.",
	"timestamp":            "ISO-8601 timestamp (UTC) for the hour being processed, centre of the interpolation interval.",
	"date":                 "Processing date (YYYY-MM-DD) copied into every row of the partition.",
	"hour":                 "Processing hour (00-23) copied into every row of the partition.",
	"u":                    "Interpolated zonal wind component (m/s), oriented west to east.",
	"v":                    "Interpolated meridional wind component (m/s), oriented south to north.",
	"u_rkt":                "Regression-kriging estimate of the U component incorporating topography as external drift.",
	"v_rkt":                "Regression-kriging estimate of the V component incorporating topography as external drift.",
	"wind_speed":           "Resultant wind speed magnitude (m/s) computed as sqrt(u^2 + v^2).",
	"wind_dir":             "Wind direction in degrees (0 = north, increasing clockwise), meteorological convention.",
	"kriging_var_u":        "Ordinary kriging variance for the U component, in squared working-grid projection units.",
	"kriging_var_v":        "Ordinary kriging variance for the V component, in squared working-grid projection units.",
	"input_count":          "Total number of original observations available in the partition.",
	"interpolated_count":   "Number of mesh nodes filled via interpolation.",
	"cv_model_u":           "Name of the variogram/IDW option that minimised cross-validation error for the U component.",
	"cv_model_v":           "Name of the variogram/IDW option that minimised cross-validation error for the V component.",
	"cv_rsr_u":             "Root square error ratio for the selected U variogram model measured during n-fold cross validation.",
	"cv_rsr_v":             "Root square error ratio for the selected V variogram model measured during n-fold cross validation.",
	"cv_bias_u":            "Bias metric for the selected U variogram model measured during n-fold cross validation.",
	"cv_bias_v":            "Bias metric for the selected V variogram model measured during n-fold cross validation.",
	"test_model_u":         "Model identifier evaluated on the hold-out set for the U component.",
	"test_model_v":         "Model identifier evaluated on the hold-out set for the V component.",
	"test_rsr_u":           "Root square error ratio for the U component computed on the hold-out samples.",
	"test_rsr_v":           "Root square error ratio for the V component computed on the hold-out samples.",
	"test_bias_u":          "Bias for the U component measured on the hold-out set.",
	"test_bias_v":          "Bias for the V component measured on the hold-out set.",
	"nearest_distance_km":  "Distance from each mesh node to the closest original observation, in kilometres.",
	"neighbors_used":       "Number of neighbouring observations within the cutoff distance employed during kriging/IDW for the node.",
	"interpolation_source": "Text flag indicating whether the value comes from original measurements, interpolation outputs, or user-supplied test points.",
	"vgm_model_u":          "Name of the variogram model selected for U (e.g. Exp, Gau, Sph, IDW or Universal).",
	"vgm_model_v":          "Name of the variogram model selected for V (e.g. Exp, Gau, Sph, IDW or Universal).",
	"vgm_range_u":          "Range parameter (native projection units) of the selected U variogram.",
	"vgm_range_v":          "Range parameter (native projection units) of the selected V variogram.",
	"vgm_sill_u":           "Sill (total variance) of the selected U variogram.",
	"vgm_sill_v":           "Sill (total variance) of the selected V variogram.",
	"vgm_nugget_u":         "Nugget effect of the selected U variogram.",
	"vgm_nugget_v":         "Nugget effect of the selected V variogram.",
	"geometry":             "EWKB point geometry stored in the partition (longitude/latitude in WGS 84).",
	"time":                 "Original timestamp column from the upstream model input when present in the source partition.",
	"source_model":         "Name of the upstream weather model the partition's observations were taken from.",
}

// DescribeColumn returns a human-readable description for a column, falling
// back to a generic sentence for names outside the glossary.
func DescribeColumn(name, logical string) string {
	if description, ok := columnGlossary[name]; ok {
		return description
	}
	return fmt.Sprintf("%s column with values of type %s.", name, logical)
}

// Plot classification property values.
const (
	PlotTypeGridMesh         = "grid-mesh"
	PlotTypeVariogram        = "variogram"
	VariantRegressionKriging = "regression-kriging"
	VariantOrdinaryKriging   = "ordinary-kriging"
)

// gridMeshPrefix marks scatter maps of the interpolation mesh.
const gridMeshPrefix = "grid_points"

var variogramPattern = regexp.MustCompile(`^variogram_(?P<component>[uv])(?P<variant>_rkt)?_empirical_`)

// componentLabels spell out the wind component letters in descriptions.
var componentLabels = map[string]string{
	"u": "zonal (u) wind component",
	"v": "meridional (v) wind component",
}

// DescribePlot classifies a diagnostic plot by its filename. It returns a
// human-readable description and classification properties; unmatched
// filenames yield an empty description and no properties, which degrades the
// plot item but does not exclude it from the catalog.
func DescribePlot(filename string) (description string, properties map[string]string) {
	name := strings.ToLower(filename)
	properties = map[string]string{}

	if strings.HasPrefix(name, gridMeshPrefix) {
		properties["plot_type"] = PlotTypeGridMesh
		return "Scatter map of the interpolation mesh in WGS 84: interpolated nodes, " +
			"original observations drawn on top, and optional test points.", properties
	}

	match := variogramPattern.FindStringSubmatch(name)
	if match == nil {
		return "", properties
	}
	component := match[variogramPattern.SubexpIndex("component")]
	variant := match[variogramPattern.SubexpIndex("variant")]
	label, ok := componentLabels[component]
	if !ok {
		label = component
	}
	properties["plot_type"] = PlotTypeVariogram
	properties["plot_component"] = component
	if variant != "" {
		properties["plot_variant"] = VariantRegressionKriging
		return fmt.Sprintf("Empirical semivariogram of the regression-kriging residuals for the %s, "+
			"using terrain as external drift.", label), properties
	}
	properties["plot_variant"] = VariantOrdinaryKriging
	return fmt.Sprintf("Empirical semivariogram for the %s produced during ordinary kriging "+
		"calibration, overlaid with the model selected by cross-validation.", label), properties
}
