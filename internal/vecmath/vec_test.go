package vecmath

import (
	"math"
	"testing"
)

const eps = 1e-9

func approx(a, b Vec3) bool {
	return math.Abs(a[0]-b[0]) < 1e-6 && math.Abs(a[1]-b[1]) < 1e-6 && math.Abs(a[2]-b[2]) < 1e-6
}

func TestYawBasis(t *testing.T) {
	tests := []struct {
		name    string
		yaw     float64
		forward Vec3
		right   Vec3
	}{
		{"zero", 0, Vec3{0, 0, -1}, Vec3{1, 0, 0}},
		{"quarter", math.Pi / 2, Vec3{-1, 0, 0}, Vec3{0, 0, -1}},
		{"half", math.Pi, Vec3{0, 0, 1}, Vec3{-1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, r := YawBasis(tt.yaw)
			if !approx(f, tt.forward) {
				t.Fatalf("forward = %v, want %v", f, tt.forward)
			}
			if !approx(r, tt.right) {
				t.Fatalf("right = %v, want %v", r, tt.right)
			}
			if d := f.Dot(r); math.Abs(d) > eps {
				t.Fatalf("forward.right = %v, want 0", d)
			}
		})
	}
}

func TestNormalizeHorizontal(t *testing.T) {
	v, ok := NormalizeHorizontal(Vec3{3, 7, 4}, NormalizeEpsilon)
	if !ok {
		t.Fatal("expected normalization")
	}
	if !approx(v, Vec3{0.6, 7, 0.8}) {
		t.Fatalf("got %v, want (0.6, 7, 0.8)", v)
	}

	small := Vec3{0.005, 0, 0.005}
	v, ok = NormalizeHorizontal(small, NormalizeEpsilon)
	if ok || v != small {
		t.Fatalf("tiny vector should pass through unchanged, got %v (normalized=%v)", v, ok)
	}
}

func TestNormalizeZero(t *testing.T) {
	if got := Normalize(Vec3{}, eps); got != (Vec3{}) {
		t.Fatalf("Normalize(0) = %v, want zero", got)
	}
	if got := Normalize(Vec3{0, 0, 5}, eps); !approx(got, Vec3{0, 0, 1}) {
		t.Fatalf("Normalize = %v, want (0,0,1)", got)
	}
}

func TestLocalToWorld(t *testing.T) {
	f, r := YawBasis(0)
	got := LocalToWorld(Vec3{0, 1, 1}, f, r)
	if !approx(got, Vec3{0, 1, -1}) {
		t.Fatalf("muzzle offset at yaw 0 = %v, want (0,1,-1)", got)
	}

	f, r = YawBasis(math.Pi / 2)
	got = LocalToWorld(Vec3{1, 0, 2}, f, r)
	if !approx(got, Vec3{-2, 0, -1}) {
		t.Fatalf("offset at yaw pi/2 = %v, want (-2,0,-1)", got)
	}
}

func TestFromTo(t *testing.T) {
	tests := []struct {
		name     string
		from, to Vec3
	}{
		{"right angle", Vec3{0, 0, -1}, Vec3{1, 0, 0}},
		{"upward", Vec3{0, 0, -1}, Vec3{0, 1, 0}},
		{"oblique", Vec3{1, 2, 3}, Vec3{-3, 1, 0.5}},
		{"opposite", Vec3{0, 0, -1}, Vec3{0, 0, 1}},
		{"opposite along x", Vec3{1, 0, 0}, Vec3{-1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := FromTo(tt.from, tt.to)
			got := Rotate(q, Normalize(tt.from, eps))
			want := Normalize(tt.to, eps)
			if !approx(got, want) {
				t.Fatalf("rotated from = %v, want %v", got, want)
			}
		})
	}
}

func TestFromToParallelIsIdentity(t *testing.T) {
	q := FromTo(Vec3{0, 0, -2}, Vec3{0, 0, -5})
	if q.W != 1 || q.V != (Vec3{}) {
		t.Fatalf("parallel rotation = %+v, want identity", q)
	}
	q = FromTo(Vec3{}, Vec3{1, 0, 0})
	if q.W != 1 || q.V != (Vec3{}) {
		t.Fatalf("zero input rotation = %+v, want identity", q)
	}
}
