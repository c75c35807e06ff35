package utils

import (
	"testing"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
)

func TestValidateShiftTime(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{"普通白班", "08:00:00", "16:00:00", false},
		{"跨午夜的夜班", "22:00:00", "06:00:00", false},
		{"开始和结束时刻相同", "08:00:00", "08:00:00", true},
		{"开始时刻格式错误", "8:00", "16:00:00", true},
		{"结束时刻格式错误", "08:00:00", "下午四点", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shift := &domain.Shift{StartTime: tt.start, EndTime: tt.end}
			err := ValidateShiftTime(shift)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateShiftTime() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
