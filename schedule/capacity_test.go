package schedule

import "testing"

func TestNeededStaff(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		want    int
		wantErr bool
	}{
		{
			name: "exact division",
			task: task(1, 2, 10, 5, nil, 9, 17),
			want: 2,
		},
		{
			name: "rounds up",
			task: task(1, 2, 11, 5, nil, 9, 17),
			want: 3,
		},
		{
			name: "small demand still needs one",
			task: task(1, 2, 1, 5, nil, 9, 17),
			want: 1,
		},
		{
			name: "zero demand is a fixed slot count",
			task: task(1, 2, 0, 5, nil, 9, 17),
			want: 5,
		},
		{
			name: "vacation uses slot count directly",
			task: vacationTask(9, 3),
			want: 3,
		},
		{
			name:    "zero per-staff capacity on work task",
			task:    task(1, 2, 10, 0, nil, 9, 17),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NeededStaff(tt.task)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NeededStaff() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !IsConfigurationError(err) {
					t.Errorf("error = %v, want ConfigurationError", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("NeededStaff() = %d, want %d", got, tt.want)
			}
		})
	}
}
