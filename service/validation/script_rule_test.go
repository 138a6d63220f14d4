/*
 * @module service/validation/script_rule_test
 * @description 脚本化校验规则测试，覆盖编译、编译缓存、签名校验和脚本规则注册
 * @architecture 测试层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 编译脚本 -> 断言CheckFunc行为 -> 注册为目录规则并经引擎执行
 * @rules 相同内容脚本只编译一次；签名不符的脚本编译失败
 * @dependencies testing, github.com/stretchr/testify
 * @refs script_rule.go
 */

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const refseqScript = `
func Check(value interface{}) (bool, string, string) {
	s, ok := value.(string)
	if !ok || s == "" {
		return true, "", ""
	}
	if regexp.MustCompile("^NM_\\d+(\\.\\d+)?$").MatchString(s) {
		return true, "", ""
	}
	return false, "RefSeq编号格式不正确: " + s, "使用NM_开头的RefSeq mRNA编号"
}
`

func TestScriptCompiler_Compile(t *testing.T) {
	compiler := NewScriptCompiler()

	check, err := compiler.Compile(refseqScript)
	require.NoError(t, err)

	ok, _, _ := check("NM_000546.6")
	assert.True(t, ok)

	ok, message, suggestion := check("ENST00000269305")
	assert.False(t, ok)
	assert.Contains(t, message, "ENST00000269305")
	assert.NotEmpty(t, suggestion)

	// 字段缺失时放行，与内置可选字段规则保持一致
	ok, _, _ = check(nil)
	assert.True(t, ok)
}

func TestScriptCompiler_CompileCache(t *testing.T) {
	compiler := NewScriptCompiler()

	_, err := compiler.Compile(refseqScript)
	require.NoError(t, err)
	assert.Equal(t, 1, compiler.CacheSize())

	// 相同内容命中缓存，数量不变
	_, err = compiler.Compile(refseqScript)
	require.NoError(t, err)
	assert.Equal(t, 1, compiler.CacheSize())

	// 内容不同触发新编译
	_, err = compiler.Compile(refseqScript + "\n// v2")
	require.NoError(t, err)
	assert.Equal(t, 2, compiler.CacheSize())

	compiler.ClearCache()
	assert.Equal(t, 0, compiler.CacheSize())
}

func TestScriptCompiler_InvalidScripts(t *testing.T) {
	compiler := NewScriptCompiler()

	_, err := compiler.Compile("func Check(") // 语法错误
	assert.Error(t, err)

	_, err = compiler.Compile(`func Verify(value interface{}) (bool, string, string) { return true, "", "" }`)
	assert.Error(t, err, "未导出Check函数应编译失败")

	_, err = compiler.Compile(`func Check(value interface{}) bool { return true }`)
	assert.Error(t, err, "签名不符应编译失败")
}

func TestRegisterScriptRule(t *testing.T) {
	catalog := NewRuleCatalog()
	compiler := NewScriptCompiler()

	err := compiler.RegisterScriptRule(catalog, EntityGene, "refseq_id", "refseq_id_format",
		refseqScript, SeverityWarning, LevelStandard)
	require.NoError(t, err)

	engine := NewEngine(catalog, LevelStandard)
	result := engine.ValidateEntity(EntityGene, map[string]interface{}{
		"symbol":    "TP53",
		"source":    "test",
		"refseq_id": "bogus",
	}, "refseq_id_format")
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "refseq_id_format", result.Issues[0].RuleName)
	assert.Equal(t, SeverityWarning, result.Issues[0].Severity)
	assert.True(t, result.IsValid, "WARNING级问题不影响有效性")
}
