package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelVersion(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"8.0.15", "8.0"},
		{"10.0.0-preview.3", "10.0"},
		{"9.0", "9.0"},
		{"8", "8"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ChannelVersion(tt.in))
		})
	}
}

func TestMajorMinor(t *testing.T) {
	assert.Equal(t, "17.8", MajorMinor("17.8.21"))
	assert.Equal(t, "17.8", MajorMinor("17.8"))
	assert.Equal(t, "17", MajorMinor("17"))
	assert.Equal(t, "12", MajorOnly("12.0"))
	assert.Equal(t, "13", MajorOnly("13"))
}

func TestMinVisualStudioVersion(t *testing.T) {
	assert.Equal(t, "17.6", MinVisualStudioVersion("17.8.21", "17.6.5,17.9.0"))
	assert.Equal(t, "17.10", MinVisualStudioVersion("17.12.1", "17.10.0"))
	assert.Equal(t, "17.0", MinVisualStudioVersion())
	assert.Equal(t, "17.0", MinVisualStudioVersion("", " , "))
	assert.Equal(t, "17.4", MinVisualStudioVersion("garbage", "17.4.2"))
}

func TestCompareChannels(t *testing.T) {
	assert.Positive(t, CompareChannels("10.0", "9.0"))
	assert.Negative(t, CompareChannels("3.1", "5.0"))
	assert.Zero(t, CompareChannels("8.0", "8.0-preview"))
	assert.Positive(t, CompareChannels("1.0", "next"))
}

func TestSortChannelsDesc(t *testing.T) {
	channels := []string{"6.0", "unknown", "10.0", "8.0", "3.1", "9.0"}
	SortChannelsDesc(channels)
	assert.Equal(t, []string{"10.0", "9.0", "8.0", "6.0", "3.1", "unknown"}, channels)
}

func TestIsLegacyChannel(t *testing.T) {
	assert.True(t, IsLegacyChannel("3.1"))
	assert.True(t, IsLegacyChannel("1.0"))
	assert.False(t, IsLegacyChannel("5.0"))
	assert.False(t, IsLegacyChannel("abc"))
}
