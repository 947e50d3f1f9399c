package config

type WorkerKeyStruct struct {
	NotifyEventsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	NotifyEventsQueue: "notify_events_queue",
}
