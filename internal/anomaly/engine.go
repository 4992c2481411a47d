// Package anomaly groups near-duplicate record titles per owner and flags
// short titles, duplicated titles and suspicious owners.
package anomaly

import (
	"fmt"
	"log/slog"
	"sort"

	"postwatch/internal/models"
	"postwatch/internal/similarity"
	"postwatch/internal/textutil"
)

// Params configures one anomaly scan.
type Params struct {
	// MinTitleLength flags every record with a shorter raw title.
	MinTitleLength int

	// Method selects the similarity backend.
	Method similarity.Method

	// SimilarThreshold is the minimum score for joining a group.
	SimilarThreshold float64

	// SuspiciousThreshold: an owner whose retained group counts sum to
	// strictly more than this is reported.
	SuspiciousThreshold int
}

// Engine runs anomaly scans over fetched record sets. It borrows the
// records read-only and owns the reports it produces.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an anomaly engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// ownerItem is one record prepared for clustering.
type ownerItem struct {
	id   int
	raw  string
	norm string
}

// Run produces the anomaly report for records. The returned result has
// Meta.MaxScan left zero for the caller to fill. All computation is total:
// any record set, including an empty one, yields a report, and the only
// error is an unknown method.
func (e *Engine) Run(records []models.Record, p Params) (*models.AnomalyResult, error) {
	backend, effective, err := similarity.ForMethod(p.Method)
	if err != nil {
		return nil, fmt.Errorf("select backend: %w", err)
	}

	result := &models.AnomalyResult{
		ShortTitles:     []models.Record{},
		DuplicateTitles: []models.DuplicateGroup{},
		SuspiciousUsers: []models.SuspiciousOwner{},
		Meta: models.AnomalyMeta{
			Backend:          string(effective),
			SimilarThreshold: p.SimilarThreshold,
		},
	}
	if len(records) == 0 {
		return result, nil
	}

	for _, r := range records {
		if len(r.Title) < p.MinTitleLength {
			result.ShortTitles = append(result.ShortTitles, r)
		}
	}

	byOwner, ownerOrder := partitionByOwner(records)

	result.DuplicateTitles = duplicateTitles(byOwner, ownerOrder)

	sortedOwners := append([]int(nil), ownerOrder...)
	sort.Ints(sortedOwners)

	for _, owner := range sortedOwners {
		items := byOwner[owner]
		if len(items) < 2 {
			continue
		}

		var groups []models.SimilarityGroup
		switch effective {
		case similarity.MethodExact:
			groups = exactGroups(items)
		case similarity.MethodFuzzy:
			groups = greedyGroups(items, backend, p.SimilarThreshold)
		case similarity.MethodCosine:
			groups = matrixGroups(items, backend, p.SimilarThreshold)
		}

		total := 0
		for _, g := range groups {
			total += g.Count
		}
		if total > p.SuspiciousThreshold {
			result.SuspiciousUsers = append(result.SuspiciousUsers, models.SuspiciousOwner{
				OwnerID:           owner,
				TotalSimilarPosts: total,
				Groups:            groups,
			})
		}
	}

	sort.SliceStable(result.SuspiciousUsers, func(i, j int) bool {
		return result.SuspiciousUsers[i].TotalSimilarPosts > result.SuspiciousUsers[j].TotalSimilarPosts
	})

	e.logger.Debug("anomaly scan done",
		"records", len(records),
		"short", len(result.ShortTitles),
		"duplicates", len(result.DuplicateTitles),
		"suspicious", len(result.SuspiciousUsers),
		"backend", effective)

	return result, nil
}

// partitionByOwner splits records per owner, keeping record order within
// each owner and first-encounter order across owners.
func partitionByOwner(records []models.Record) (map[int][]ownerItem, []int) {
	byOwner := make(map[int][]ownerItem)
	var order []int
	for _, r := range records {
		if _, seen := byOwner[r.OwnerID]; !seen {
			order = append(order, r.OwnerID)
		}
		byOwner[r.OwnerID] = append(byOwner[r.OwnerID], ownerItem{
			id:   r.ID,
			raw:  r.Title,
			norm: textutil.Normalize(r.Title),
		})
	}
	return byOwner, order
}

// duplicateTitles reports, per owner, every normalized title shared by two
// or more records. Independent of any similarity threshold. Ordered by
// owner ascending, then count descending.
func duplicateTitles(byOwner map[int][]ownerItem, ownerOrder []int) []models.DuplicateGroup {
	out := []models.DuplicateGroup{}
	for _, owner := range ownerOrder {
		items := byOwner[owner]
		counts := make(map[string]int)
		var normOrder []string
		for _, it := range items {
			if counts[it.norm] == 0 {
				normOrder = append(normOrder, it.norm)
			}
			counts[it.norm]++
		}
		for _, norm := range normOrder {
			if counts[norm] < 2 {
				continue
			}
			var ids []int
			rep := ""
			for _, it := range items {
				if it.norm != norm {
					continue
				}
				if len(ids) == 0 {
					rep = it.raw
				}
				ids = append(ids, it.id)
			}
			out = append(out, models.DuplicateGroup{
				OwnerID: owner,
				Title:   rep,
				Count:   counts[norm],
				PostIDs: ids,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OwnerID != out[j].OwnerID {
			return out[i].OwnerID < out[j].OwnerID
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// exactGroups clusters by normalized-title equality, keeping groups of two
// or more.
func exactGroups(items []ownerItem) []models.SimilarityGroup {
	counts := make(map[string]int)
	var normOrder []string
	for _, it := range items {
		if counts[it.norm] == 0 {
			normOrder = append(normOrder, it.norm)
		}
		counts[it.norm]++
	}

	var groups []models.SimilarityGroup
	for _, norm := range normOrder {
		if counts[norm] < 2 {
			continue
		}
		var ids []int
		rep := ""
		for _, it := range items {
			if it.norm == norm {
				if len(ids) == 0 {
					rep = it.raw
				}
				ids = append(ids, it.id)
			}
		}
		groups = append(groups, models.SimilarityGroup{RepTitle: rep, PostIDs: ids, Count: counts[norm]})
	}
	return groups
}

// greedyGroups is the order-dependent single-pass clustering: each record
// joins the first existing group whose representative scores at or above
// the threshold, otherwise it seeds a new group. Groups below two members
// are dropped afterwards. Deliberately not a globally optimal clustering;
// the result depends on input order.
func greedyGroups(items []ownerItem, backend similarity.Backend, threshold float64) []models.SimilarityGroup {
	var groups []models.SimilarityGroup
	for _, it := range items {
		placed := false
		for gi := range groups {
			if backend.Ratio(it.norm, textutil.Normalize(groups[gi].RepTitle)) >= threshold {
				groups[gi].PostIDs = append(groups[gi].PostIDs, it.id)
				groups[gi].Count++
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, models.SimilarityGroup{RepTitle: it.raw, PostIDs: []int{it.id}, Count: 1})
		}
	}

	kept := groups[:0]
	for _, g := range groups {
		if g.Count >= 2 {
			kept = append(kept, g)
		}
	}
	return kept
}

// matrixGroups computes the similarity matrix once over the owner's
// normalized titles and groups connected-component style: each unassigned
// record seeds a group and absorbs every later unassigned record similar
// enough to the seed (not to other members).
func matrixGroups(items []ownerItem, backend similarity.Backend, threshold float64) []models.SimilarityGroup {
	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.norm
	}
	sim := backend.Matrix(titles)

	var groups []models.SimilarityGroup
	assigned := make([]bool, len(items))
	for i := range items {
		if assigned[i] {
			continue
		}
		member := []int{i}
		assigned[i] = true
		for j := i + 1; j < len(items); j++ {
			if !assigned[j] && sim[i][j] >= threshold {
				member = append(member, j)
				assigned[j] = true
			}
		}
		if len(member) < 2 {
			continue
		}
		ids := make([]int, len(member))
		for k, idx := range member {
			ids[k] = items[idx].id
		}
		groups = append(groups, models.SimilarityGroup{
			RepTitle: items[member[0]].raw,
			PostIDs:  ids,
			Count:    len(member),
		})
	}
	return groups
}
