package main

import (
	"log"

	"Bhumi/CronJobs"
	"Bhumi/FiberConfig"
	"Bhumi/Models"
	"Bhumi/Notifications"
	"Bhumi/Reconciler"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	Models.Connect()

	push, err := Notifications.InitFCM()
	if err != nil {
		log.Fatal("Failed to initialize Firebase:", err)
	}
	sink := Notifications.NewDBSink(Models.DB, nil)
	if push != nil {
		sink.Push = push
	}

	reconciler := Reconciler.NewAssignmentReconciler(Models.DB, sink)

	overdueChecker := CronJobs.NewOverdueChecker(Models.DB, sink, false)
	if err := overdueChecker.Start(); err != nil {
		log.Printf("Failed to start overdue checker: %v", err)
	}

	FiberConfig.FiberConfig(reconciler)
}
