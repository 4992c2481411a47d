package models

// SliceResult is the response of the slice (passthrough listing) query.
type SliceResult struct {
	Data []Record  `json:"data"`
	Meta SliceMeta `json:"meta"`
}

// SliceMeta echoes the slice parameters plus the upstream total-count hint.
type SliceMeta struct {
	Offset      int     `json:"offset"`
	Limit       int     `json:"limit"`
	OwnerID     *int    `json:"userId"`
	SourceTotal *string `json:"source_total"`
}

// DuplicateGroup reports records of one owner sharing a normalized title.
type DuplicateGroup struct {
	OwnerID int    `json:"userId"`
	Title   string `json:"title"`
	Count   int    `json:"count"`
	PostIDs []int  `json:"postIds"`
}

// SimilarityGroup is one cluster of near-duplicate titles within an owner.
// Count always equals len(PostIDs).
type SimilarityGroup struct {
	RepTitle string `json:"rep_title"`
	PostIDs  []int  `json:"postIds"`
	Count    int    `json:"count"`
}

// SuspiciousOwner reports an owner whose similar-title total exceeded the
// configured threshold.
type SuspiciousOwner struct {
	OwnerID           int               `json:"userId"`
	TotalSimilarPosts int               `json:"total_similar_posts"`
	Groups            []SimilarityGroup `json:"groups"`
}

// AnomalyResult is the response of the anomaly query.
type AnomalyResult struct {
	ShortTitles     []Record          `json:"short_titles"`
	DuplicateTitles []DuplicateGroup  `json:"duplicate_titles"`
	SuspiciousUsers []SuspiciousOwner `json:"suspicious_users"`
	Meta            AnomalyMeta       `json:"meta"`
}

// AnomalyMeta reports which backend actually ran plus the scan parameters.
type AnomalyMeta struct {
	Backend          string  `json:"backend"`
	SimilarThreshold float64 `json:"similar_threshold"`
	MaxScan          int     `json:"max_scan"`
}

// OwnerWordCount ranks one owner by distinct-token count.
type OwnerWordCount struct {
	OwnerID         int `json:"userId"`
	UniqueWordCount int `json:"unique_word_count"`
}

// WordCount is one entry of the global token-frequency ranking.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// SummaryResult is the response of the summary query.
type SummaryResult struct {
	TopOwners []OwnerWordCount `json:"top_users_by_unique_words"`
	TopWords  []WordCount      `json:"top_words"`
	Meta      SummaryMeta      `json:"meta"`
}

// SummaryMeta echoes the scan cap used.
type SummaryMeta struct {
	MaxScan int `json:"max_scan"`
}
