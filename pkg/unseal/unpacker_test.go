package unseal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packedScript is the shape embed pages actually serve: a packer prelude
// followed by the payload, radix, keyword count and keyword table.
const packedScript = `eval(function(p,a,c,k,e,d){e=function(c){return c};if(!''.replace(/^/,String)){while(c--){d[c]=k[c]||c}k=[function(e){return d[e]}];e=function(){return'\\w+'};c=1};while(c--){if(k[c]){p=p.replace(new RegExp('\\b'+e(c)+'\\b','g'),k[c])}}return p}('0 1={2:"3",4:5};',10,6,'var|player|file|https://cdn.example.com/stream/master.m3u8|autoplay|true'.split('|'),0,{}))`

func TestIsPacked(t *testing.T) {
	assert.True(t, IsPacked(packedScript))
	assert.True(t, IsPacked(`eval(function(p,a,c,k,e,r){...}`))
	assert.False(t, IsPacked(`var player = {file:"https://example.com/x.m3u8"};`))
	assert.False(t, IsPacked(""))
}

func TestUnpack(t *testing.T) {
	out, err := Unpack(packedScript)
	require.NoError(t, err)
	assert.Equal(t, `var player={file:"https://cdn.example.com/stream/master.m3u8",autoplay:true};`, out)
}

func TestUnpackThenExtract(t *testing.T) {
	out, err := Unpack(packedScript)
	require.NoError(t, err)

	url, ok := ExtractBetween(out, `file:"`, `"`)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/stream/master.m3u8", url)
}

func TestUnpackEscapedQuotes(t *testing.T) {
	script := `eval(function(p,a,c,k,e,d){}('0 1=\'2\';',10,3,'var|label|hello'.split('|'),0,{}))`
	out, err := Unpack(script)
	require.NoError(t, err)
	assert.Equal(t, `var label='hello';`, out)
}

func TestUnpackNotPacked(t *testing.T) {
	_, err := Unpack("var x = 1;")
	require.Error(t, err)
}

func TestUnpackMissingParams(t *testing.T) {
	_, err := Unpack(`eval(function(p,a,c,k,e,d){return p})`)
	require.Error(t, err)
}

func TestExtractBetween(t *testing.T) {
	tests := []struct {
		name       string
		s          string
		marker     string
		terminator string
		want       string
		ok         bool
	}{
		{"found", `sources:[{file:"https://x.com/a.m3u8",label:"HD"}]`, `file:"`, `"`, "https://x.com/a.m3u8", true},
		{"marker missing", `no link here`, `file:"`, `"`, "", false},
		{"unterminated", `file:"https://x.com/a`, `file:"`, `"`, "", false},
		{"empty value", `file:""`, `file:"`, `"`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractBetween(tt.s, tt.marker, tt.terminator)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnbase(t *testing.T) {
	tests := []struct {
		word  string
		radix int
		want  int
		ok    bool
	}{
		{"0", 10, 0, true},
		{"12", 10, 12, true},
		{"z", 36, 35, true},
		{"Z", 36, 35, true}, // parseInt folds case below radix 37
		{"a", 62, 10, true},
		{"A", 62, 36, true},
		{"10", 62, 62, true},
		{"!", 10, 0, false},
		{"1", 1, 0, false},
	}

	for _, tt := range tests {
		got, ok := unbase(tt.word, tt.radix)
		assert.Equal(t, tt.ok, ok, "unbase(%q, %d)", tt.word, tt.radix)
		assert.Equal(t, tt.want, got, "unbase(%q, %d)", tt.word, tt.radix)
	}
}
