/*
 * @module service/validation/script_rule
 * @description 脚本化自定义校验规则，使用Yaegi解释器编译执行用户脚本，支持编译缓存
 * @architecture 分层架构 - 数据质量校验层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 脚本注册 -> 哈希查缓存 -> 编译 -> 包装为CheckFunc加入目录
 * @rules 脚本必须导出 Check(value interface{}) (bool, string, string) 函数；脚本内的panic按统一策略向调用方传播
 * @dependencies github.com/traefik/yaegi
 * @refs catalog.go, engine.go
 */

package validation

import (
	"crypto/sha1"
	"fmt"
	"sync"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// ScriptCompiler 校验脚本编译器，按脚本内容哈希缓存编译结果
type ScriptCompiler struct {
	mu    sync.RWMutex
	cache map[string]*compiledCheck
}

// compiledCheck 编译后的校验函数
type compiledCheck struct {
	fn       CheckFunc
	compiled time.Time
	hash     string
}

// NewScriptCompiler 创建校验脚本编译器
func NewScriptCompiler() *ScriptCompiler {
	return &ScriptCompiler{
		cache: make(map[string]*compiledCheck),
	}
}

// Compile 编译校验脚本为CheckFunc。
// 脚本是一段Go函数体可用的源码，必须导出:
//
//	func Check(value interface{}) (bool, string, string)
//
// 相同内容的脚本只编译一次
func (sc *ScriptCompiler) Compile(script string) (CheckFunc, error) {
	hash := fmt.Sprintf("%x", sha1.Sum([]byte(script)))

	sc.mu.RLock()
	cached, ok := sc.cache[hash]
	sc.mu.RUnlock()
	if ok {
		return cached.fn, nil
	}

	fn, err := sc.compile(script)
	if err != nil {
		return nil, fmt.Errorf("校验脚本编译失败: %w", err)
	}

	sc.mu.Lock()
	sc.cache[hash] = &compiledCheck{fn: fn, compiled: time.Now(), hash: hash}
	sc.mu.Unlock()

	return fn, nil
}

// compile 在独立解释器实例中编译脚本并提取Check函数
func (sc *ScriptCompiler) compile(script string) (CheckFunc, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("加载标准库符号失败: %w", err)
	}

	wrapped := fmt.Sprintf(`
package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var _ = fmt.Sprintf
var _ = regexp.MustCompile
var _ = strconv.Atoi
var _ = strings.TrimSpace

%s
`, script)

	if _, err := i.Eval(wrapped); err != nil {
		return nil, fmt.Errorf("脚本求值失败: %w", err)
	}

	v, err := i.Eval("main.Check")
	if err != nil {
		return nil, fmt.Errorf("脚本未导出Check函数: %w", err)
	}

	fn, ok := v.Interface().(func(interface{}) (bool, string, string))
	if !ok {
		return nil, fmt.Errorf("Check函数签名不正确，期望 func(interface{}) (bool, string, string)")
	}

	return CheckFunc(fn), nil
}

// CacheSize 返回已缓存的编译脚本数量
func (sc *ScriptCompiler) CacheSize() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.cache)
}

// ClearCache 清空编译缓存
func (sc *ScriptCompiler) ClearCache() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cache = make(map[string]*compiledCheck)
}

// RegisterScriptRule 编译脚本并将其注册为目录中的一条自定义规则，
// 注册后的规则对后续校验立即生效
func (sc *ScriptCompiler) RegisterScriptRule(catalog *RuleCatalog, entityType, field, ruleName, script string, severity Severity, minLevel StrictnessLevel) error {
	check, err := sc.Compile(script)
	if err != nil {
		return err
	}
	catalog.AddRule(entityType, ValidationRule{
		Field:    field,
		RuleName: ruleName,
		Check:    check,
		Severity: severity,
		MinLevel: minLevel,
	})
	return nil
}
