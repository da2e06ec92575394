package models

import (
	"log"

	"bitbucket.org/mmdatafocus/livemall_catalog/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Product{}, &ProductVariant{},
		&FlashSale{}, &FlashSaleOrderKey{}, &FlashSaleEventRecord{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
