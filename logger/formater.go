package logger

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
)

func itoa(buf *[]byte, i int, wid int) {
	// Assemble decimal in reverse order.
	var b [20]byte
	bp := len(b) - 1
	for i >= 10 || wid > 1 {
		wid--
		q := i / 10
		b[bp] = byte('0' + i - q*10)
		bp--
		i = q
	}
	// i < 10
	b[bp] = byte('0' + i)
	*buf = append(*buf, b[bp:]...)
}

var pid = os.Getpid()

type FmtArgs struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Min    int
	Sec    int
	Ns     int
	Level  string
	Module string
	File   string
	Line   int
	Pc     uintptr
	Fmtf   string
	Args   []interface{}
}

type tokenFunc func(buf *[]byte, fa *FmtArgs)

var defaultTokens = map[string]tokenFunc{
	"msg": func(buf *[]byte, fa *FmtArgs) {
		switch {
		case fa.Fmtf == "":
			for i, arg := range fa.Args {
				if i > 0 {
					*buf = append(*buf, ' ')
				}
				*buf = append(*buf, fmt.Sprint(arg)...)
			}
		case len(fa.Args) == 0:
			*buf = append(*buf, fa.Fmtf...)
		default:
			*buf = append(*buf, fmt.Sprintf(fa.Fmtf, fa.Args...)...)
		}
	},
	"module": func(buf *[]byte, fa *FmtArgs) {
		*buf = append(*buf, fa.Module...)
	},
	"file": func(buf *[]byte, fa *FmtArgs) {
		*buf = append(*buf, fa.File...)
	},
	"line": func(buf *[]byte, fa *FmtArgs) {
		itoa(buf, fa.Line, -1)
	},
	"func": func(buf *[]byte, fa *FmtArgs) {
		*buf = append(*buf, runtime.FuncForPC(fa.Pc).Name()...)
	},
	"level": func(buf *[]byte, fa *FmtArgs) {
		*buf = append(*buf, fa.Level...)
	},
	"pid": func(buf *[]byte, fa *FmtArgs) {
		itoa(buf, pid, -1)
	},
	"yyyy": func(buf *[]byte, fa *FmtArgs) {
		itoa(buf, fa.Year, 4)
	},
	"MM": func(buf *[]byte, fa *FmtArgs) {
		itoa(buf, fa.Month, 2)
	},
	"dd": func(buf *[]byte, fa *FmtArgs) {
		itoa(buf, fa.Day, 2)
	},
	"HH": func(buf *[]byte, fa *FmtArgs) {
		itoa(buf, fa.Hour, 2)
	},
	"mm": func(buf *[]byte, fa *FmtArgs) {
		itoa(buf, fa.Min, 2)
	},
	"ss": func(buf *[]byte, fa *FmtArgs) {
		itoa(buf, fa.Sec, 2)
	},
	"SSSSSS": func(buf *[]byte, fa *FmtArgs) {
		itoa(buf, fa.Ns/1e3, 6)
	},
	"SSSSS": func(buf *[]byte, fa *FmtArgs) {
		itoa(buf, fa.Ns/1e4, 5)
	},
	"SSSS": func(buf *[]byte, fa *FmtArgs) {
		itoa(buf, fa.Ns/1e5, 4)
	},
	"SSS": func(buf *[]byte, fa *FmtArgs) {
		itoa(buf, fa.Ns/1e6, 3)
	},
	"SS": func(buf *[]byte, fa *FmtArgs) {
		itoa(buf, fa.Ns/1e7, 2)
	},
	"S": func(buf *[]byte, fa *FmtArgs) {
		itoa(buf, fa.Ns/1e8, 1)
	},
}

type segment struct {
	lit   string
	token tokenFunc
}

// Formater 按布局渲染日志内容，布局由格式符和普通文本混合而成，例如
// "yyyy-MM-dd HH:mm:ss.SSSSSS [pid] [level] module/file:line msg"
// 布局只编译一次，名字长的格式符优先匹配
type Formater struct {
	mu       sync.Mutex
	tokens   map[string]tokenFunc
	names    []string
	format   string
	eol      string
	segments []segment
}

func MFormater(format string, eol string) *Formater {
	f := &Formater{tokens: map[string]tokenFunc{}, format: format, eol: eol}
	for name, tf := range defaultTokens {
		f.tokens[name] = tf
	}
	f.recompile()
	return f
}

// 设置输出格式
func (l *Formater) SetFormat(format string, eol string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format = format
	l.eol = eol
	l.recompile()
}

func (l *Formater) GetFormat() (format string, eol string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.format, l.eol
}

// 新增格式定义，同名覆盖已有定义
func (l *Formater) AddFormat(name string, f func(buf *[]byte, fa *FmtArgs)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens[name] = f
	l.recompile()
}

func (l *Formater) recompile() {
	l.names = l.names[:0]
	for name := range l.tokens {
		l.names = append(l.names, name)
	}
	sort.Slice(l.names, func(i, j int) bool {
		if len(l.names[i]) == len(l.names[j]) {
			return l.names[i] < l.names[j]
		}
		return len(l.names[i]) > len(l.names[j])
	})
	segs := []segment{}
	lit := []byte{}
	for i := 0; i < len(l.format); {
		matched := false
		for _, name := range l.names {
			if ie := i + len(name); ie <= len(l.format) && l.format[i:ie] == name {
				if len(lit) > 0 {
					segs = append(segs, segment{lit: string(lit)})
					lit = lit[:0]
				}
				segs = append(segs, segment{token: l.tokens[name]})
				i = ie
				matched = true
				break
			}
		}
		if !matched {
			lit = append(lit, l.format[i])
			i++
		}
	}
	if len(lit) > 0 {
		segs = append(segs, segment{lit: string(lit)})
	}
	l.segments = segs
}

var fmtbufs = sync.Pool{New: func() interface{} {
	b := make([]byte, 0, 256)
	return &b
}}

// 格式化输出内容
func (l *Formater) Format(fa *FmtArgs) (s string) {
	l.mu.Lock()
	segs, eol := l.segments, l.eol
	l.mu.Unlock()
	bp := fmtbufs.Get().(*[]byte)
	buf := (*bp)[:0]
	for _, seg := range segs {
		if seg.token != nil {
			seg.token(&buf, fa)
		} else {
			buf = append(buf, seg.lit...)
		}
	}
	if len(buf) < len(eol) || string(buf[len(buf)-len(eol):]) != eol {
		buf = append(buf, eol...)
	}
	s = string(buf)
	*bp = buf[:0]
	fmtbufs.Put(bp)
	return
}
