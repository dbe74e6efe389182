package policy

import (
	"fmt"
	"math"
	"time"

	"github.com/ajitpratap0/kvbridge/pkg/expression"
)

func baseFields[T any](base func(*T) *Base) map[string]setter[T] {
	return map[string]setter[T]{
		"socket_timeout":         durationField(func(p *T) *time.Duration { return &base(p).SocketTimeout }),
		"total_timeout":          durationField(func(p *T) *time.Duration { return &base(p).TotalTimeout }),
		"max_retries":            intField(func(p *T) *int { return &base(p).MaxRetries }),
		"sleep_between_retries":  durationField(func(p *T) *time.Duration { return &base(p).SleepBetweenRetries }),
		"read_touch_ttl_percent": intField(func(p *T) *int { return &base(p).ReadTouchTTLPercent }),
		"filter_expression":      expressionField(func(p *T) **expression.Expr { return &base(p).FilterExpression }),
	}
}

// expressionField accepts a validated *expression.Expr; nil clears it.
func expressionField[T any](get func(*T) **expression.Expr) setter[T] {
	return func(p *T, v any) error {
		switch e := v.(type) {
		case nil:
			*get(p) = nil
			return nil
		case *expression.Expr:
			if e == nil {
				*get(p) = nil
				return nil
			}
			if err := e.Validate(); err != nil {
				return err
			}
			*get(p) = e
			return nil
		default:
			return fmt.Errorf("expected an expression, got %T", v)
		}
	}
}

func writeFields() map[string]setter[Write] {
	f := baseFields(func(p *Write) *Base { return &p.Base })
	f["key"] = enumField(func(p *Write) *KeyPolicy { return &p.Key }, KeySend)
	f["exists"] = enumField(func(p *Write) *RecordExists { return &p.Exists }, ExistsCreateOnly)
	f["gen"] = enumField(func(p *Write) *GenPolicy { return &p.Gen }, GenGT)
	f["commit_level"] = enumField(func(p *Write) *CommitLevel { return &p.CommitLevel }, CommitMaster)
	f["durable_delete"] = boolField(func(p *Write) *bool { return &p.DurableDelete })
	f["respond_all_ops"] = boolField(func(p *Write) *bool { return &p.RespondAllOps })
	f["ttl"] = func(p *Write, v any) error {
		ttl, err := toTTL(v)
		if err != nil {
			return err
		}
		p.TTL = ttl
		return nil
	}
	return f
}

func batchFields() map[string]setter[Batch] {
	f := baseFields(func(p *Batch) *Base { return &p.Base })
	f["allow_inline"] = boolField(func(p *Batch) *bool { return &p.AllowInline })
	f["allow_inline_ssd"] = boolField(func(p *Batch) *bool { return &p.AllowInlineSSD })
	f["respond_all_keys"] = boolField(func(p *Batch) *bool { return &p.RespondAllKeys })
	f["concurrent_nodes"] = intField(func(p *Batch) *int { return &p.ConcurrentNodes })
	return f
}

func queryFields() map[string]setter[Query] {
	f := baseFields(func(p *Query) *Base { return &p.Base })
	f["max_records"] = func(p *Query, v any) error {
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("must not be negative, got %d", n)
		}
		p.MaxRecords = n
		return nil
	}
	f["records_per_second"] = intField(func(p *Query) *int { return &p.RecordsPerSecond })
	f["max_concurrent_nodes"] = intField(func(p *Query) *int { return &p.MaxConcurrentNodes })
	f["record_queue_size"] = intField(func(p *Query) *int { return &p.RecordQueueSize })
	f["include_bin_data"] = boolField(func(p *Query) *bool { return &p.IncludeBinData })
	return f
}

// durationField accepts milliseconds as an integer, or a time.Duration.
func durationField[T any](get func(*T) *time.Duration) setter[T] {
	return func(p *T, v any) error {
		if d, ok := v.(time.Duration); ok {
			if d < 0 {
				return fmt.Errorf("must not be negative, got %s", d)
			}
			*get(p) = d
			return nil
		}
		ms, err := toInt64(v)
		if err != nil {
			return err
		}
		if ms < 0 {
			return fmt.Errorf("must not be negative, got %d", ms)
		}
		*get(p) = time.Duration(ms) * time.Millisecond
		return nil
	}
}

func intField[T any](get func(*T) *int) setter[T] {
	return func(p *T, v any) error {
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		if n < 0 || n > math.MaxInt32 {
			return fmt.Errorf("out of range: %d", n)
		}
		*get(p) = int(n)
		return nil
	}
}

func boolField[T any](get func(*T) *bool) setter[T] {
	return func(p *T, v any) error {
		switch b := v.(type) {
		case bool:
			*get(p) = b
			return nil
		default:
			n, err := toInt64(v)
			if err != nil || (n != 0 && n != 1) {
				return fmt.Errorf("expected a boolean, got %T", v)
			}
			*get(p) = n == 1
			return nil
		}
	}
}

func enumField[T any, E ~int](get func(*T) *E, maxValue E) setter[T] {
	return func(p *T, v any) error {
		if e, ok := v.(E); ok {
			v = int64(e)
		}
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		if n < 0 || n > int64(maxValue) {
			return fmt.Errorf("value %d outside 0..%d", n, int64(maxValue))
		}
		*get(p) = E(n)
		return nil
	}
}

func toTTL(v any) (TTL, error) {
	if t, ok := v.(TTL); ok {
		v = int64(t)
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, err
	}
	if n < int64(TTLClientDefault) || n > math.MaxInt32 {
		return 0, fmt.Errorf("ttl %d out of range", n)
	}
	return TTL(n), nil
}

// toInt64 accepts every Go integer kind and integral floats, since hosts that
// decode JSON hand over float64 for whole numbers.
func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of range", n)
		}
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of range", n)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int64(n), nil
	case float32:
		return toInt64(float64(n))
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}
