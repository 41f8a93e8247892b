package ingest

import (
	"mediarag/types"
)

// Provenance carries the caller/job identity fields that must survive any
// metadata overlay unmodified.
type Provenance struct {
	OriginalFileName string
	FileName         string
	FileType         string
	ProcessType      string
	Tags             []string
	Synonyms         []string
}

// MergeMetadata assembles the final metadata of every passage. Precedence,
// lowest to highest: the passage's own metadata, then each overlay mapping
// in list order, then the forced provenance fields. A pre-existing non-empty
// title wins over the original file name default.
func MergeMetadata(passages []types.Passage, overlays []map[string]any, prov Provenance) {
	tags := dedupTags(prov.Tags, prov.Synonyms)

	for i := range passages {
		meta := passages[i].Metadata
		if meta == nil {
			meta = make(map[string]any)
			passages[i].Metadata = meta
		}

		for _, overlay := range overlays {
			for k, v := range overlay {
				meta[k] = v
			}
		}

		meta["original_file_name"] = prov.OriginalFileName
		meta["file_name"] = prov.FileName
		meta["file_type"] = prov.FileType
		meta["process_type"] = prov.ProcessType
		meta["tags"] = tags

		if title, ok := meta["title"].(string); !ok || title == "" {
			meta["title"] = prov.OriginalFileName
		}
	}
}

// dedupTags unions tags and synonyms preserving first-seen order.
func dedupTags(tags, synonyms []string) []string {
	seen := make(map[string]struct{}, len(tags)+len(synonyms))
	out := make([]string, 0, len(tags)+len(synonyms))
	for _, t := range append(append([]string{}, tags...), synonyms...) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
