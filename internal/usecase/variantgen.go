package usecase

// GenerateVariantCombos expands attribute value lists into the cartesian
// product, one {attribute_name: value} map per combination. Attribute
// declaration order is preserved; within an attribute, value order is
// preserved. Attributes with no values are skipped rather than aborting the
// expansion, and no attributes with values at all yields an empty result,
// not a single empty combination.
func GenerateVariantCombos(attributes []AttributeInput) []map[string]string {
	names := make([]string, 0, len(attributes))
	valueLists := make([][]string, 0, len(attributes))
	for _, a := range attributes {
		if a.Name == "" || len(a.Values) == 0 {
			continue
		}
		names = append(names, a.Name)
		valueLists = append(valueLists, a.Values)
	}
	if len(names) == 0 {
		return []map[string]string{}
	}

	total := 1
	for _, vals := range valueLists {
		total *= len(vals)
	}

	combos := make([]map[string]string, 0, total)
	indices := make([]int, len(names))
	for {
		combo := make(map[string]string, len(names))
		for i, name := range names {
			combo[name] = valueLists[i][indices[i]]
		}
		combos = append(combos, combo)

		// Odometer increment: last attribute varies fastest.
		pos := len(indices) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(valueLists[pos]) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			return combos
		}
	}
}
