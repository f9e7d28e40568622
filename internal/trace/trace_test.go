package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RubyFormats(t *testing.T) {
	t.Run("continuation form", func(t *testing.T) {
		frames := Parse("from app/services/user_service.rb:25:in `get_user_data'")
		require.Len(t, frames, 1)
		assert.Equal(t, "user_service.rb", frames[0].Filename)
		assert.Equal(t, "get_user_data", frames[0].Function)
		assert.Equal(t, 25, frames[0].Line)
	})

	t.Run("frame form", func(t *testing.T) {
		frames := Parse("app/models/user.rb:12:in `find'")
		require.Len(t, frames, 1)
		assert.Equal(t, "user.rb", frames[0].Filename)
		assert.Equal(t, "find", frames[0].Function)
		assert.Equal(t, 12, frames[0].Line)
	})
}

func TestParse_BareFrame(t *testing.T) {
	frames := Parse("src/server.py:40")
	require.Len(t, frames, 1)
	assert.Equal(t, "server.py", frames[0].Filename)
	assert.Equal(t, UnknownFunction, frames[0].Function)
	assert.Equal(t, 40, frames[0].Line)
}

func TestParse_NodeFrame(t *testing.T) {
	frames := Parse("    at Object.getUser (/srv/app/handlers/user.js:10:15)")
	require.Len(t, frames, 1)
	assert.Equal(t, "user.js", frames[0].Filename)
	assert.Equal(t, "Object.getUser", frames[0].Function)
	assert.Equal(t, 10, frames[0].Line)
	assert.Equal(t, 15, frames[0].Column)
}

func TestParse_PythonFrame(t *testing.T) {
	frames := Parse(`  File "/srv/app/views.py", line 58, in dispatch`)
	require.Len(t, frames, 1)
	assert.Equal(t, "views.py", frames[0].Filename)
	assert.Equal(t, "dispatch", frames[0].Function)
	assert.Equal(t, 58, frames[0].Line)
}

func TestParse_JVMFrame(t *testing.T) {
	frames := Parse("\tat com.example.UserService.getUser(UserService.java:42)")
	require.Len(t, frames, 1)
	assert.Equal(t, "UserService.java", frames[0].Filename)
	assert.Equal(t, "com.example.UserService.getUser", frames[0].Function)
	assert.Equal(t, 42, frames[0].Line)
	assert.Zero(t, frames[0].Column)
}

func TestParse_GenericFallback(t *testing.T) {
	frames := Parse("get_user app/services/user_service.rb:25")
	require.Len(t, frames, 1)
	assert.Equal(t, "user_service.rb", frames[0].Filename)
	assert.Equal(t, "get_user", frames[0].Function)
	assert.Equal(t, 25, frames[0].Line)
}

func TestParse_PreservesInputOrder(t *testing.T) {
	text := "from app/a.rb:1:in `outer'\n" +
		"from app/b.rb:2:in `middle'\n" +
		"from app/c.rb:3:in `inner'\n"

	frames := Parse(text)
	require.Len(t, frames, 3)
	assert.Equal(t, []string{"a.rb", "b.rb", "c.rb"},
		[]string{frames[0].Filename, frames[1].Filename, frames[2].Filename})
	assert.Equal(t, []int{1, 2, 3},
		[]int{frames[0].Line, frames[1].Line, frames[2].Line})
}

func TestParse_SkipsUnrecognizedLines(t *testing.T) {
	text := "NoMethodError: undefined method `name' for nil\n" +
		"from app/user.rb:7:in `show'\n" +
		"some random log output without a frame\n"

	frames := Parse(text)
	require.Len(t, frames, 1)
	assert.Equal(t, "user.rb", frames[0].Filename)
}

func TestParse_NoRecognizableLines(t *testing.T) {
	assert.Empty(t, Parse("nothing here resembles a stack trace"))
	assert.Empty(t, Parse(""))
}

func TestParse_StripsDirectoryPrefix(t *testing.T) {
	t.Run("unix separators", func(t *testing.T) {
		frames := Parse("from /very/deep/nested/dir/thing.rb:3:in `run'")
		require.Len(t, frames, 1)
		assert.Equal(t, "thing.rb", frames[0].Filename)
	})

	t.Run("windows separators", func(t *testing.T) {
		frames := Parse(`at handler (C:\srv\app\handler.js:9:2)`)
		require.Len(t, frames, 1)
		assert.Equal(t, "handler.js", frames[0].Filename)
	})
}

func TestParse_AcceptsLineZero(t *testing.T) {
	// The parser does not validate semantic sense; downstream guards ranges.
	frames := Parse("app/weird.rb:0:in `boot'")
	require.Len(t, frames, 1)
	assert.Equal(t, 0, frames[0].Line)
}

func TestParse_SpecificBeatsGeneric(t *testing.T) {
	// The Ruby continuation form must not fall through to the generic
	// "<function> <path>:<line>" recognizer, which would capture "from"
	// as the function name.
	frames := Parse("from app/x.rb:5:in `go'")
	require.Len(t, frames, 1)
	assert.Equal(t, "go", frames[0].Function)
}
