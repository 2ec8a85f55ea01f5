package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func loadBundle(t *testing.T) *Bundle {
	t.Helper()
	b, err := Load()
	require.NoError(t, err)
	return b
}

func TestLoad_EmbeddedCatalogs(t *testing.T) {
	b := loadBundle(t)
	assert.Equal(t, []language.Tag{language.English, language.Persian}, b.Supported())
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	b := loadBundle(t)
	en := b.catalogs[language.English]
	fa := b.catalogs[language.Persian]
	for key := range fa {
		assert.Contains(t, en, key, "fa key missing from en")
	}
	for _, key := range []string{
		"errorFetchingTasks", "guestActionRestriction.actionNotAllowed",
		"guestAction.createTasks", "notFound.title", "status.todo", "category.shopping",
	} {
		assert.Contains(t, fa, key)
	}
}

func TestT(t *testing.T) {
	l := loadBundle(t).Localizer(language.English)

	assert.Equal(t, "Task created successfully!", l.T("taskCreatedSuccess"))
	assert.Equal(t, "Status", l.T("status"))
	assert.Equal(t, "In Progress", l.T("status.inprogress"))
	assert.Equal(t, "Oops! Page Not Found.", l.T("notFound.title"))
	assert.Equal(t,
		"Creating tasks is not available for guest users. Please log in.",
		l.T("guestActionRestriction.actionNotAllowed", "action", l.T("guestAction.createTasks")))
	assert.Equal(t, "no.such.key", l.T("no.such.key"))
}

func TestT_FallsBackToEnglish(t *testing.T) {
	l := loadBundle(t).Localizer(language.Persian)

	assert.Equal(t, "خطا در دریافت وظایف.", l.T("errorFetchingTasks"))
	assert.Equal(t, "quit", l.T("help.quit"))
	assert.True(t, l.Has("help.quit"))
	assert.False(t, l.Has("nope"))
}

func TestT_NilLocalizer(t *testing.T) {
	var l *Localizer
	assert.Equal(t, "guestUser", l.T("guestUser"))
}

func TestMatch(t *testing.T) {
	b := loadBundle(t)
	assert.Equal(t, language.Persian, b.Match("", "fa-IR"))
	assert.Equal(t, language.Persian, b.Match("fa"))
	assert.Equal(t, language.English, b.Match("en-GB"))
	assert.Equal(t, language.English, b.Match("not a tag!", "ja"))
	assert.Equal(t, language.English, b.Match())
}

func TestLocalizer_UnknownTag(t *testing.T) {
	l := loadBundle(t).Localizer(language.Japanese)
	assert.Equal(t, language.English, l.Tag())
}

func TestLoadFS_RequiresEnglish(t *testing.T) {
	fsys := fstest.MapFS{"loc/fa.yaml": {Data: []byte("a: b\n")}}
	_, err := LoadFS(fsys, "loc")
	assert.Error(t, err)
}

func TestLoadFS_NonStringValues(t *testing.T) {
	fsys := fstest.MapFS{"loc/en.yaml": {Data: []byte("count: 3\nnested:\n  deep:\n    key: v\n")}}
	b, err := LoadFS(fsys, "loc")
	require.NoError(t, err)
	l := b.Localizer(language.English)
	assert.Equal(t, "3", l.T("count"))
	assert.Equal(t, "v", l.T("nested.deep.key"))
}

func TestEnvLocale(t *testing.T) {
	env := func(m map[string]string) func(string) (string, bool) {
		return func(k string) (string, bool) { v, ok := m[k]; return v, ok }
	}
	assert.Equal(t, "fa-IR", EnvLocale(env(map[string]string{"LANG": "fa_IR.UTF-8"})))
	assert.Equal(t, "de-DE", EnvLocale(env(map[string]string{"LC_ALL": "de_DE@euro", "LANG": "fa_IR"})))
	assert.Equal(t, "en-US", EnvLocale(env(map[string]string{"LC_ALL": "C", "LANG": "en_US.UTF-8"})))
	assert.Equal(t, "", EnvLocale(env(nil)))
}
