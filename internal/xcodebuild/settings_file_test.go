package xcodebuild

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFileReader struct {
	files   map[string][]byte
	readErr error
}

func (m *mockFileReader) ReadFile(path string) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	data, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func TestParseSettingsFile_ShowBuildSettingsLayout(t *testing.T) {
	content := `Build settings for action build and target App:
    ACTION = build
    BUILT_PRODUCTS_DIR = /out
    FRAMEWORKS_FOLDER_PATH = App.app/Frameworks
    OTHER_CODE_SIGN_FLAGS = 
    VALID_ARCHS = arm64 arm64e
`
	fs := &mockFileReader{files: map[string][]byte{"/tmp/settings.txt": []byte(content)}}

	got, err := ParseSettingsFile(fs, "/tmp/settings.txt")

	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"ACTION":                 "build",
		"BUILT_PRODUCTS_DIR":     "/out",
		"FRAMEWORKS_FOLDER_PATH": "App.app/Frameworks",
		"OTHER_CODE_SIGN_FLAGS":  "",
		"VALID_ARCHS":            "arm64 arm64e",
	}, got)
}

func TestParseSettingsFile_ShowBuildSettingsCapture(t *testing.T) {
	content := `Command line invocation:
    /Applications/Xcode.app/Contents/Developer/usr/bin/xcodebuild -showBuildSettings -project App.xcodeproj -target App CONFIGURATION=Debug

User defaults from command line:
    IDEPackageSupportUseBuiltinSCM = YES

Build settings from command line:
    CONFIGURATION = Debug

Build settings for action build and target App:
    ACTION = build
    AD_HOC_CODE_SIGNING_ALLOWED = NO
    BUILT_PRODUCTS_DIR = /Users/dev/Library/Developer/Xcode/DerivedData/App-abc/Build/Products/Debug-iphoneos
    CODE_SIGNING_ALLOWED = YES
    CODE_SIGNING_REQUIRED = YES
    CONFIGURATION = Debug
    DWARF_DSYM_FOLDER_PATH = /Users/dev/Library/Developer/Xcode/DerivedData/App-abc/Build/Products/Debug-iphoneos
    EXPANDED_CODE_SIGN_IDENTITY = 
    FRAMEWORKS_FOLDER_PATH = App.app/Frameworks
    SRCROOT = /Users/dev/src/App
    VALID_ARCHS = arm64 arm64e armv7 armv7s

`
	fs := &mockFileReader{files: map[string][]byte{"/tmp/settings.txt": []byte(content)}}

	got, err := ParseSettingsFile(fs, "/tmp/settings.txt")

	require.NoError(t, err)
	assert.Equal(t, "build", got["ACTION"])
	assert.Equal(t, "Debug", got["CONFIGURATION"])
	assert.Equal(t, "App.app/Frameworks", got["FRAMEWORKS_FOLDER_PATH"])
	assert.Equal(t, "", got["EXPANDED_CODE_SIGN_IDENTITY"])
	assert.Equal(t, "arm64 arm64e armv7 armv7s", got["VALID_ARCHS"])
	assert.NotContains(t, got, "IDEPackageSupportUseBuiltinSCM")
	assert.Len(t, got, 11)
}

func TestParseSettingsFile_MalformedLineInsideSettingsSection(t *testing.T) {
	content := "Build settings for action build and target App:\n    ACTION = build\n    garbage\n"
	fs := &mockFileReader{files: map[string][]byte{"/s": []byte(content)}}

	_, err := ParseSettingsFile(fs, "/s")

	var parseErr *SettingsParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 3, parseErr.Line)
}

func TestParseSettingsFile_EnvLayout(t *testing.T) {
	content := "# exported by CI\r\n" +
		"export CONFIGURATION=Release\r\n" +
		"// xcconfig-style comment\r\n" +
		"\r\n" +
		"EXPANDED_CODE_SIGN_IDENTITY_NAME=\"Apple Distribution: ACME (TEAMID)\"\r\n" +
		"SRCROOT='/src/my app'\r\n" +
		"CONFIGURATION=Debug\r\n"
	fs := &mockFileReader{files: map[string][]byte{"/ci/build.env": []byte(content)}}

	got, err := ParseSettingsFile(fs, "/ci/build.env")

	require.NoError(t, err)
	assert.Equal(t, "Debug", got["CONFIGURATION"])
	assert.Equal(t, "Apple Distribution: ACME (TEAMID)", got["EXPANDED_CODE_SIGN_IDENTITY_NAME"])
	assert.Equal(t, "/src/my app", got["SRCROOT"])
	assert.Len(t, got, 3)
}

func TestParseSettingsFile_ValueContainingEquals(t *testing.T) {
	fs := &mockFileReader{files: map[string][]byte{"/s": []byte("OTHER_CODE_SIGN_FLAGS=--timestamp=none\n")}}

	got, err := ParseSettingsFile(fs, "/s")

	require.NoError(t, err)
	assert.Equal(t, "--timestamp=none", got["OTHER_CODE_SIGN_FLAGS"])
}

func TestParseSettingsFile_MalformedLine(t *testing.T) {
	fs := &mockFileReader{files: map[string][]byte{"/s": []byte("ACTION=build\nnot a setting\n")}}

	_, err := ParseSettingsFile(fs, "/s")

	var parseErr *SettingsParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 2, parseErr.Line)
	assert.Equal(t, "not a setting", parseErr.Content)
	assert.ErrorIs(t, err, ErrSettingsParse)
}

func TestParseSettingsFile_InvalidKey(t *testing.T) {
	fs := &mockFileReader{files: map[string][]byte{"/s": []byte("1ACTION=build\n")}}

	_, err := ParseSettingsFile(fs, "/s")

	assert.ErrorIs(t, err, ErrSettingsParse)
}

func TestParseSettingsFile_ReadError(t *testing.T) {
	fs := &mockFileReader{readErr: errors.New("denied")}

	_, err := ParseSettingsFile(fs, "/s")

	var readErr *SettingsReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "/s", readErr.Path)
}

func TestParseSettingsFile_FeedsEnvironment(t *testing.T) {
	var content string
	for k, v := range fullSettings() {
		content += k + " = " + v + "\n"
	}
	fs := &mockFileReader{files: map[string][]byte{"/s": []byte(content)}}

	values, err := ParseSettingsFile(fs, "/s")
	require.NoError(t, err)

	env, ok := FromMap(values)
	require.True(t, ok)
	assert.Equal(t, "/intermediate/App.app/Frameworks", env.FrameworksPath())
	assert.Equal(t, []string{"--timestamp=none", "--deep"}, env.CodeSignFlags())
}
