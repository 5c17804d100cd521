package logfields

import "go.uber.org/zap"

func Event(val string) zap.Field {
	return zap.String("event", val)
}

func TriggerKind(val string) zap.Field {
	return zap.String("trigger_kind", val)
}
