package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for event documents.
//
// Question, choice, and result texts are mostly Chinese, so the CJK analyzer
// (bigram segmentation) is the default; ids and types use the keyword
// analyzer for exact filtering.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = cjk.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// Question - primary search target, boosted at query time.
	questionFieldMapping := bleve.NewTextFieldMapping()
	questionFieldMapping.Analyzer = cjk.AnalyzerName
	questionFieldMapping.Store = true
	questionFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("question", questionFieldMapping)

	// Choice texts - searchable, stored for result cards.
	choicesFieldMapping := bleve.NewTextFieldMapping()
	choicesFieldMapping.Analyzer = cjk.AnalyzerName
	choicesFieldMapping.Store = true
	choicesFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("choices", choicesFieldMapping)

	// Result texts - searchable but not stored (can be large).
	resultsFieldMapping := bleve.NewTextFieldMapping()
	resultsFieldMapping.Analyzer = cjk.AnalyzerName
	resultsFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("results", resultsFieldMapping)

	// School display name - searchable.
	schoolFieldMapping := bleve.NewTextFieldMapping()
	schoolFieldMapping.Analyzer = cjk.AnalyzerName
	schoolFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("school", schoolFieldMapping)

	// Contributors - searchable without segmentation surprises.
	contributorsFieldMapping := bleve.NewTextFieldMapping()
	contributorsFieldMapping.Analyzer = cjk.AnalyzerName
	contributorsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("contributors", contributorsFieldMapping)

	// Exact-match fields.
	typeFieldMapping := bleve.NewTextFieldMapping()
	typeFieldMapping.Analyzer = keyword.Name
	typeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("type", typeFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	idFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	provinceFieldMapping := bleve.NewTextFieldMapping()
	provinceFieldMapping.Analyzer = keyword.Name
	provinceFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("province_id", provinceFieldMapping)

	cityFieldMapping := bleve.NewTextFieldMapping()
	cityFieldMapping.Analyzer = keyword.Name
	cityFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("city_id", cityFieldMapping)

	// End-game flag - filterable.
	endGameFieldMapping := bleve.NewBooleanFieldMapping()
	endGameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("end_game", endGameFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
