package main

import (
	"flag"
	"log"
	"os"

	"digital-store-bot/internal/app"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Путь к файлу конфигурации")
	flag.Parse()

	// Проверка существования файла конфигурации
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		log.Fatalf("Конфигурационный файл не найден: %s", *configPath)
	}

	if err := app.Run(*configPath); err != nil {
		log.Fatal(err)
	}
}
