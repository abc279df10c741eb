package config

type WorkerKeyStruct struct {
	MailQueue string
}

var WorkerKey = &WorkerKeyStruct{
	MailQueue: "mail_queue",
}
