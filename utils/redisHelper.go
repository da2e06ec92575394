package utils

import (
	"os"
	"reflect"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/livemall_catalog/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

/* Redis */

// store object list, Type List:$shop_id (shop id can be empty for platform-wide lists)
func StoreRedisList[T any](obj any, shopId string) error {
	var key string
	if shopId == "" {
		key = GetTypeName[T]() + "List"
	} else {
		key = GetTypeName[T]() + "List:" + shopId
	}
	return config.SetRedisObject(key, &obj, GetCacheLifespan())
}

// retrieve a list.
// shopId can be empty
func RetrieveRedisList[T any](shopId string) ([]*T, error) {
	var key string
	if shopId == "" {
		key = GetTypeName[T]() + "List"
	} else {
		key = GetTypeName[T]() + "List:" + shopId
	}

	var result []*T
	exists, err := config.GetRedisObject(key, &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

// clear list, TypeList:$shop_id
func RemoveRedisList[T any](shopId string) error {
	var key string
	if shopId == "" {
		key = GetTypeName[T]() + "List"
	} else {
		key = GetTypeName[T]() + "List:" + shopId
	}
	return config.RemoveRedisKey(key)
}
