package criteria

import (
	"github.com/viant/schedsim/service/dao"
)

// Parameter names understood by Match
const (
	State = "State"
	CPU   = "CPU"
)

// FilterByState reports whether state satisfies every State parameter
func FilterByState(state string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != State {
			continue
		}
		if !matchString(state, parameter.Value) {
			return false
		}
	}
	return true
}

// FilterByCPU reports whether cpu satisfies every CPU parameter
func FilterByCPU(cpu int, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != CPU {
			continue
		}
		switch actual := parameter.Value.(type) {
		case int:
			if cpu != actual {
				return false
			}
		case []int:
			if !containsInt(actual, cpu) {
				return false
			}
		}
	}
	return true
}

func matchString(value string, expect interface{}) bool {
	switch actual := expect.(type) {
	case string:
		return value == actual
	case []string:
		for _, s := range actual {
			if value == s {
				return true
			}
		}
		return false
	}
	return true
}

func containsInt(values []int, value int) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
