package domain

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Parámetros reservados de paginación y orden.
const (
	ParamPageSize   = "pageSize"
	ParamPageNumber = "pageNumber"
	ParamSortBy     = "sortBy"
)

const (
	suffixMin = "_min"
	suffixMax = "_max"
)

// ParseQuerySpec valida los parámetros en bruto y construye un QuerySpec.
// Todo error es un *ValidationError; no hay resultados parciales.
func ParseQuerySpec(fields *FieldRegistry, params map[string]string) (QuerySpec, error) {
	raw, err := normalizeKeys(params)
	if err != nil {
		return QuerySpec{}, err
	}

	pageSize, err := positiveInt(raw, ParamPageSize)
	if err != nil {
		return QuerySpec{}, err
	}
	pageNumber, err := positiveInt(raw, ParamPageNumber)
	if err != nil {
		return QuerySpec{}, err
	}
	if pageNumber-1 > math.MaxInt/pageSize {
		return QuerySpec{}, validationErrorf("page window overflows: pageSize=%d pageNumber=%d", pageSize, pageNumber)
	}

	sortField := fields.DefaultSort()
	if v := strings.TrimSpace(raw[strings.ToLower(ParamSortBy)]); v != "" {
		f, ok := fields.Lookup(v)
		if !ok {
			return QuerySpec{}, validationErrorf("cannot sort by unknown field %q", v)
		}
		sortField = f
	}

	if err := checkUnknownFields(fields, raw); err != nil {
		return QuerySpec{}, err
	}

	var filters []FilterCriterion
	for _, f := range fields.Fields() {
		crit, ok, err := probeField(f, raw)
		if err != nil {
			return QuerySpec{}, err
		}
		if ok {
			filters = append(filters, crit)
		}
	}

	return QuerySpec{
		Filters:    filters,
		SortField:  sortField,
		PageSize:   pageSize,
		PageNumber: pageNumber,
	}, nil
}

// ParamsFromValues aplana una query string; una clave repetida es ambigua y se rechaza.
func ParamsFromValues(values url.Values) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 1 {
			return nil, validationErrorf("parameter %q given more than once", k)
		}
		if len(vs) == 1 {
			out[k] = vs[0]
		} else {
			out[k] = ""
		}
	}
	return out, nil
}

func normalizeKeys(params map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(params))
	original := make(map[string]string, len(params))
	for k, v := range params {
		key := strings.ToLower(strings.TrimSpace(k))
		if prev, dup := original[key]; dup {
			a, b := prev, k
			if a > b {
				a, b = b, a
			}
			return nil, validationErrorf("parameters %q and %q refer to the same field", a, b)
		}
		original[key] = k
		out[key] = v
	}
	return out, nil
}

func positiveInt(raw map[string]string, name string) (int, error) {
	v, ok := raw[strings.ToLower(name)]
	if !ok || strings.TrimSpace(v) == "" {
		return 0, validationErrorf("%s is required", name)
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, validationErrorf("%s must be an integer, got %q", name, v)
	}
	if n < 1 {
		return 0, validationErrorf("%s must be greater than zero, got %d", name, n)
	}
	return n, nil
}

func checkUnknownFields(fields *FieldRegistry, raw map[string]string) error {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		if !reservedParams[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, ok := fields.Lookup(filterBase(k)); !ok {
			return validationErrorf("unknown filter field %q", k)
		}
	}
	return nil
}

// filterBase quita como mucho un sufijo de rango: "tempo_max_min" queda en
// "tempo_max", que no es un campo.
func filterBase(key string) string {
	switch {
	case strings.HasSuffix(key, suffixMin):
		return strings.TrimSuffix(key, suffixMin)
	case strings.HasSuffix(key, suffixMax):
		return strings.TrimSuffix(key, suffixMax)
	default:
		return key
	}
}

// probeField busca <campo>, <campo>_min y <campo>_max para un campo del registro.
func probeField(f FieldDescriptor, raw map[string]string) (FilterCriterion, bool, error) {
	key := strings.ToLower(f.Name)
	exactRaw, hasExact := raw[key]
	minRaw, hasMin := raw[key+suffixMin]
	maxRaw, hasMax := raw[key+suffixMax]

	if !hasExact && !hasMin && !hasMax {
		return FilterCriterion{}, false, nil
	}
	if (hasMin || hasMax) && !f.RangeCapable {
		return FilterCriterion{}, false, validationErrorf("field %q does not support range filters", f.Name)
	}
	if hasExact && (hasMin || hasMax) {
		return FilterCriterion{}, false, validationErrorf("field %q cannot combine an exact value with a range", f.Name)
	}

	crit := FilterCriterion{Field: f}
	var err error
	if hasExact {
		if crit.Exact, err = parseBound(f, f.Name, exactRaw); err != nil {
			return FilterCriterion{}, false, err
		}
	}
	if hasMin {
		if crit.Min, err = parseBound(f, f.Name+suffixMin, minRaw); err != nil {
			return FilterCriterion{}, false, err
		}
	}
	if hasMax {
		if crit.Max, err = parseBound(f, f.Name+suffixMax, maxRaw); err != nil {
			return FilterCriterion{}, false, err
		}
	}
	if crit.Min != nil && crit.Max != nil && f.Kind.Compare(*crit.Min, *crit.Max) > 0 {
		return FilterCriterion{}, false, validationErrorf("%s must not exceed %s", f.Name+suffixMin, f.Name+suffixMax)
	}
	return crit, true, nil
}

func parseBound(f FieldDescriptor, param, raw string) (*FieldValue, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, validationErrorf("%s must not be empty", param)
	}
	v, err := f.Kind.Parse(raw)
	if err != nil {
		return nil, validationErrorf("invalid %s value for %s: %v", f.Kind, param, err)
	}
	return &v, nil
}
