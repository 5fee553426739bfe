package codec

import "testing"

func BenchmarkEncodeThreeFieldTuple(b *testing.B) {
	enc := NewEncoder(Int32, Text, Text)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := enc.AppendAll(int32(i), "hello", "world"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeThreeFieldTuple(b *testing.B) {
	buf, err := Marshal(int32(1), "hello", "world")
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(buf, Int32, Text, Text); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMarshal(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Marshal(int64(i), "payload", float64(0.5)); err != nil {
			b.Fatal(err)
		}
	}
}
