package common

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/mattn/go-isatty"
	logging "github.com/inconshreveable/log15"

	"boscoin.io/sctester/lib/errors"
)

const TimeFormatISO8601 string = "2006-01-02T15:04:05.000000000Z07:00"

var (
	DefaultLogLevel   logging.Lvl     = logging.LvlInfo
	DefaultLogHandler logging.Handler = logging.StreamHandler(os.Stdout, DefaultLogFormat(os.Stdout))
)

// SetLogging set the logger
func SetLogging(logger logging.Logger, level logging.Lvl, handler logging.Handler) {
	logger.SetHandler(logging.LvlFilterHandler(level, handler))
}

// DefaultLogFormat picks the terminal format for a tty and one JSON record
// per line otherwise.
func DefaultLogFormat(f *os.File) logging.Format {
	if isatty.IsTerminal(f.Fd()) {
		return logging.TerminalFormat()
	}

	return JsonFormatEx(false, true)
}

// NewLogHandler returns a handler writing to stdout, or JSON records to the
// file at `output` when it is not empty.
func NewLogHandler(output string) (logging.Handler, error) {
	if len(output) < 1 {
		return logging.StreamHandler(os.Stdout, DefaultLogFormat(os.Stdout)), nil
	}

	return logging.FileHandler(output, JsonFormatEx(false, true))
}

// `formatJSONValue` and `JsonFormatEx` was derived from
// https://github.com/inconshreveable/log15/blob/199fca55789248e0520a3bd33e9045799738e793/format.go#L131
// .
const errorKey = "LOG15_ERROR"

func formatJSONValue(value interface{}) (result interface{}) {
	defer func() {
		if err := recover(); err != nil {
			if v := reflect.ValueOf(value); v.Kind() == reflect.Ptr && v.IsNil() {
				result = "nil"
			} else {
				panic(err)
			}
		}
	}()

	switch v := value.(type) {
	case json.Marshaler, *errors.Error:
		return v
	case time.Time:
		return v.Format(TimeFormatISO8601)
	case []byte:
		return fmt.Sprintf("%x", v)
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return v
	}
}

func JsonFormatEx(pretty, lineSeparated bool) logging.Format {
	jsonMarshal := json.Marshal
	if pretty {
		jsonMarshal = func(v interface{}) ([]byte, error) {
			return json.MarshalIndent(v, "", "    ")
		}
	}

	return logging.FormatFunc(func(r *logging.Record) []byte {
		props := make(map[string]interface{})

		props[r.KeyNames.Time] = r.Time
		props[r.KeyNames.Lvl] = r.Lvl.String()
		props[r.KeyNames.Msg] = r.Msg

		for i := 0; i < len(r.Ctx); i += 2 {
			k, ok := r.Ctx[i].(string)
			if !ok {
				props[errorKey] = fmt.Sprintf("%+v is not a string key", r.Ctx[i])
			}
			props[k] = formatJSONValue(r.Ctx[i+1])
		}

		b, err := jsonMarshal(props)
		if err != nil {
			b, _ = jsonMarshal(map[string]string{
				errorKey: err.Error(),
			})
			return b
		}

		if lineSeparated {
			b = append(b, '\n')
		}

		return b
	})
}
