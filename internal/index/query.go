package index

import (
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/query"
)

// fuzzyFuzziness is bleve's integer edit-distance knob, the closest
// approximation its query API offers to a similarity-ratio threshold for
// the short identifier-length keywords this index deals in.
const fuzzyFuzziness = 2

// KeywordSearch runs a multi-keyword query over the index. Keywords are
// lowercased and empty ones dropped. When typesOnly, every clause is
// restricted to the localNameTags field and a mandatory docType=type term
// is added; otherwise clauses search the broader tags field. Fuzzy keyword
// clauses combine as SHOULD, prefix clauses as MUST.
//
// bleve's public Similarity hook has no per-field length-norm override, so
// scoring is length-normalized here instead: every hit's engine score is
// divided by len(result.Name) and results are re-sorted, which reproduces
// the tested invariant (shorter fully-qualified names rank first) without
// fighting bleve's scorer internals.
func (s *Store) KeywordSearch(keywords []string, limit int, typesOnly, fuzzy bool) ([]Result, error) {
	field := "tags"
	if typesOnly {
		field = "localNameTags"
	}

	var clauses []query.Query
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if fuzzy {
			q := bleve.NewFuzzyQuery(kw)
			q.SetField(field)
			q.SetFuzziness(fuzzyFuzziness)
			clauses = append(clauses, q)
		} else {
			q := bleve.NewPrefixQuery(kw)
			q.SetField(field)
			clauses = append(clauses, q)
		}
	}
	if len(clauses) == 0 {
		return nil, nil
	}

	var root query.Query
	if fuzzy {
		root = bleve.NewDisjunctionQuery(clauses...)
	} else {
		root = bleve.NewConjunctionQuery(clauses...)
	}
	if typesOnly {
		typeTerm := bleve.NewTermQuery(string(DocTypeType))
		typeTerm.SetField("docType")
		root = bleve.NewConjunctionQuery(root, typeTerm)
	}

	req := bleve.NewSearchRequestOptions(root, searchLimit(limit), 0, false)
	req.Fields = []string{"name", "localName", "declaredAs", "docType", "owner", "file", "offset"}

	res, err := s.index.Search(req)
	if err != nil {
		return nil, err
	}

	return rankByLengthNorm(res.Hits), nil
}

func searchLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}

type scoredResult struct {
	result Result
	score  float64
}

// rankByLengthNorm converts hits to Results and re-sorts by
// score / len(name) descending so shorter, more specific names outrank
// longer ones at similar relevance.
func rankByLengthNorm(hits search.DocumentMatchCollection) []Result {
	scored := make([]scoredResult, 0, len(hits))
	for _, hit := range hits {
		r := resultFromHit(hit)
		norm := hit.Score
		if n := len(r.Name); n > 0 {
			norm = hit.Score / float64(n)
		}
		scored = append(scored, scoredResult{result: r, score: norm})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	out := make([]Result, len(scored))
	for i, s := range scored {
		out[i] = s.result
	}
	return out
}

func resultFromHit(hit *search.DocumentMatch) Result {
	r := Result{
		Name:       fieldStr(hit.Fields, "name"),
		LocalName:  fieldStr(hit.Fields, "localName"),
		DeclaredAs: DeclaredAs(fieldStr(hit.Fields, "declaredAs")),
		Owner:      fieldStr(hit.Fields, "owner"),
	}
	if file := fieldStr(hit.Fields, "file"); file != "" {
		r.Pos = &Position{File: file, Offset: fieldInt(hit.Fields, "offset")}
	}
	return r
}

func fieldStr(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func fieldInt(fields map[string]interface{}, key string) int {
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// ImportSuggestions ranks import candidates for each requested type name.
// For each one, it builds the keyword set {name} ∪
// camel-case splits of name, runs a types-only fuzzy search, and ranks
// distinct results by (Levenshtein distance of result.LocalName to name
// ascending, length of result.Name ascending). Distance is memoized across
// the call via memo, so repeated local names across requested type names
// are not recomputed.
func (s *Store) ImportSuggestions(typeNames []string, limit int, memo *LevenshteinMemo) (map[string][]Result, error) {
	if memo == nil {
		memo = NewLevenshteinMemo()
	}

	out := make(map[string][]Result, len(typeNames))
	for _, name := range typeNames {
		keywords := append([]string{name}, SplitTypeName(name)...)
		hits, err := s.KeywordSearch(keywords, searchLimit(limit)*4, true, true)
		if err != nil {
			return nil, err
		}

		seen := make(map[string]bool, len(hits))
		distinct := hits[:0:0]
		for _, h := range hits {
			if seen[h.Name] {
				continue
			}
			seen[h.Name] = true
			distinct = append(distinct, h)
		}

		sort.SliceStable(distinct, func(i, j int) bool {
			di := memo.Distance(distinct[i].LocalName, name)
			dj := memo.Distance(distinct[j].LocalName, name)
			if di != dj {
				return di < dj
			}
			return len(distinct[i].Name) < len(distinct[j].Name)
		})

		if n := searchLimit(limit); len(distinct) > n {
			distinct = distinct[:n]
		}
		out[name] = distinct
	}
	return out, nil
}
