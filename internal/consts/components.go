package consts

const (
	COMP_DAO_TASK  = "task_dao"
	COMP_DAO_USER  = "user_dao"
	COMP_SVC_TASK  = "task_service"
	COMP_SVC_AUTH  = "auth_service"
	COMP_CTRL_TASK = "task_ctrl"
	COMP_CTRL_USER = "user_ctrl"
)

// DATASOURCE must match a postgres_gorm datasource entry in the runtime config.
const DATASOURCE = "taskdeck"
