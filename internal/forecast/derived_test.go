package forecast

import (
	"math"
	"testing"
)

func TestDewPointF(t *testing.T) {
	t.Parallel()

	t.Run("saturated air dew point equals air temperature", func(t *testing.T) {
		t.Parallel()
		for _, tempF := range []float64{32, 50, 70, 85, 95} {
			got := DewPointF(tempF, 100)
			if math.Abs(got-tempF) > 0.5 {
				t.Errorf("DewPointF(%v, 100): want ~%v, got %v", tempF, tempF, got)
			}
		}
	})

	t.Run("zero humidity returns sentinel", func(t *testing.T) {
		t.Parallel()
		if got := DewPointF(70, 0); got != DewPointSentinelF {
			t.Errorf("DewPointF(70, 0): want sentinel %v, got %v", DewPointSentinelF, got)
		}
		if got := DewPointF(70, -5); got != DewPointSentinelF {
			t.Errorf("DewPointF(70, -5): want sentinel %v, got %v", DewPointSentinelF, got)
		}
	})

	t.Run("dew point is below air temperature for unsaturated air", func(t *testing.T) {
		t.Parallel()
		if got := DewPointF(85, 80); got >= 85 {
			t.Errorf("DewPointF(85, 80): want < 85, got %v", got)
		}
	})
}

func TestHeatIndex(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		tempF    float64
		humidity float64
		check    func(t *testing.T, got float64)
	}{
		{
			name: "below temperature domain returns input", tempF: 79, humidity: 90,
			check: func(t *testing.T, got float64) {
				if got != 79 {
					t.Errorf("want 79 unchanged, got %v", got)
				}
			},
		},
		{
			name: "below humidity domain returns input", tempF: 95, humidity: 39,
			check: func(t *testing.T, got float64) {
				if got != 95 {
					t.Errorf("want 95 unchanged, got %v", got)
				}
			},
		},
		{
			name: "hot humid air feels hotter than actual", tempF: 90, humidity: 70,
			check: func(t *testing.T, got float64) {
				if got <= 90 {
					t.Errorf("want > 90, got %v", got)
				}
			},
		},
		{
			name: "humid correction applies between 80 and 87", tempF: 82, humidity: 95,
			check: func(t *testing.T, got float64) {
				if got <= 82 {
					t.Errorf("want > 82, got %v", got)
				}
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tc.check(t, HeatIndex(tc.tempF, tc.humidity))
		})
	}
}

func TestWindChill(t *testing.T) {
	t.Parallel()

	if got := WindChill(60, 20); got != 60 {
		t.Errorf("above 50°F: want 60 unchanged, got %v", got)
	}
	if got := WindChill(40, 2); got != 40 {
		t.Errorf("calm air: want 40 unchanged, got %v", got)
	}
	if got := WindChill(30, 15); got >= 30 {
		t.Errorf("cold windy air: want < 30, got %v", got)
	}
}

func TestFeelsLikeDispatch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		tempF    float64
		humidity float64
		windMph  float64
		want     func() float64
		bound    func(t *testing.T, got float64)
	}{
		{
			name: "hot humid routes to heat index", tempF: 82, humidity: 45, windMph: 0,
			want: func() float64 { return HeatIndex(82, 45) },
			bound: func(t *testing.T, got float64) {
				if got < 82 {
					t.Errorf("heat index must be >= air temp in its domain, got %v", got)
				}
			},
		},
		{
			name: "cold windy routes to wind chill", tempF: 40, humidity: 50, windMph: 5,
			want: func() float64 { return WindChill(40, 5) },
			bound: func(t *testing.T, got float64) {
				if got > 40 {
					t.Errorf("wind chill must be <= air temp, got %v", got)
				}
			},
		},
		{
			name: "moderate routes to apparent temperature", tempF: 70, humidity: 50, windMph: 0,
			want: func() float64 { return ApparentTemperature(fToC(70), 50, 0) },
		},
		{
			name: "boundary 50°F with wind still uses wind chill", tempF: 50, humidity: 45, windMph: 5,
			want: func() float64 { return WindChill(50, 5) },
		},
		{
			name: "boundary 80°F with 40% humidity uses heat index", tempF: 80, humidity: 40, windMph: 10,
			want: func() float64 { return HeatIndex(80, 40) },
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := FeelsLike(tc.tempF, tc.humidity, tc.windMph)
			if want := tc.want(); got != want {
				t.Errorf("FeelsLike(%v, %v, %v): want %v, got %v", tc.tempF, tc.humidity, tc.windMph, want, got)
			}
			if tc.bound != nil {
				tc.bound(t, got)
			}
		})
	}
}

func TestComfortDescriptions(t *testing.T) {
	t.Parallel()

	descs := ComfortDescriptions(70, 50)
	if len(descs) != 1 {
		t.Fatalf("moderate conditions: want 1 description, got %d (%v)", len(descs), descs)
	}

	descs = ComfortDescriptions(95, 80)
	if len(descs) != 2 {
		t.Fatalf("hot muggy conditions: want 2 descriptions, got %d (%v)", len(descs), descs)
	}

	descs = ComfortDescriptions(45, 20)
	if len(descs) != 2 {
		t.Fatalf("cold dry conditions: want 2 descriptions, got %d (%v)", len(descs), descs)
	}
}
