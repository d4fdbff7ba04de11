package bpvote

import (
	"os"

	"github.com/spf13/viper"
)

// InitConfig sets up our Viper config object
func InitConfig(config *viper.Viper) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		LogCLI(err.Error(), 0)
	}
	config.SetDefault("rootDir", homeDir+"/bpvote/")
	config.SetConfigType("yaml")
	config.SetConfigFile(config.GetString("rootDir") + "config.yaml")
	err = config.ReadInConfig()
	if err != nil {
		LogCLI(err.Error(), 4)
	}
	config.SetDefault("firstRun", true)
	config.SetDefault("logLevel", 4)
	config.SetDefault("devMode", false)
	config.SetDefault("rpcEndpoint", "https://eos.greymass.com")
	config.SetDefault("chainId", "aca376f206b8fc25a6ed44dbdc66547c36c6c33e3a119ffbeaef943642f0e906")
	config.SetDefault("currentProducer", "")
	config.SetDefault("suggestedBPs", []string{})
	config.SetDefault("notSuggestedBPs", []string{})
	config.SetDefault("expectedBPs", int64(0))
	config.SetDefault("voterName", "")
	config.SetDefault("voterPermission", "active")
	config.SetDefault("apiAddr", "127.0.0.1:1032")
	// Create our working directory and config file if not exist
	initRootDir(config)
	Touch(config.GetString("rootDir") + "config.yaml")
	err = config.WriteConfig()
	if err != nil {
		LogCLI(err.Error(), 0)
	}
}

func initRootDir(conf *viper.Viper) {
	_, err := os.Stat(conf.GetString("rootDir"))
	if os.IsNotExist(err) {
		err = os.Mkdir(conf.GetString("rootDir"), 0755)
		if err != nil {
			LogCLI(err, 0)
		}
	}
}
