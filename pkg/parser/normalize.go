package parser

// Normalize renames parser-produced keys to canonical keys using the
// descriptor's normalize map (declared canonical -> parser-produced, so it
// is inverted here before applying). Unmapped keys pass through unchanged.
// Given an identity map, rows are returned unchanged.
func Normalize(rows []Row, normalizeMap map[string]string) []Row {
	if len(normalizeMap) == 0 {
		return rows
	}
	inverted := make(map[string]string, len(normalizeMap)) // parser-produced -> canonical
	for canonical, produced := range normalizeMap {
		inverted[produced] = canonical
	}

	out := make([]Row, len(rows))
	for i, row := range rows {
		renamed := Row{}
		for k, v := range row {
			if canonical, ok := inverted[k]; ok {
				renamed[canonical] = v
			} else {
				renamed[k] = v
			}
		}
		out[i] = renamed
	}
	return out
}
