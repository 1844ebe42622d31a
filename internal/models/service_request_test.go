package models

import (
	"reflect"
	"testing"
)

func TestServiceTypeList(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"MIXING", []string{"MIXING"}},
		{"MIXING,MASTERING", []string{"MIXING", "MASTERING"}},
		{"MIXING, MASTERING ,RECORDING", []string{"MIXING", "MASTERING", "RECORDING"}},
		{"MIXING,,MASTERING", []string{"MIXING", "MASTERING"}},
		{"", nil},
	}

	for _, tt := range tests {
		r := ServiceRequest{ServiceTypes: tt.raw}
		if got := r.ServiceTypeList(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ServiceTypeList(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
